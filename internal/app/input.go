package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ptyonic/mcstatus"
	"github.com/ptyonic/mcstatus/internal/config"
)

var (
	// ErrUsageRequested indicates usage help was requested
	ErrUsageRequested = errors.New("usage requested")

	// ErrVersionRequested indicates version display was requested
	ErrVersionRequested = errors.New("version requested")

	// ErrUpdateCheckRequested indicates update check was requested
	ErrUpdateCheckRequested = errors.New("update check requested")
)

// RunConfig contains everything needed for one probe run.
type RunConfig struct {
	config.Config

	// Network options
	UseIPv4 bool
	UseIPv6 bool

	// ConfigFile is the YAML file that was loaded, if any.
	ConfigFile string

	// Output options. The formatter is filled in by Run.
	PrinterConfig mcstatus.PrinterConfig
}

type options struct {
	useIPv4      bool
	useIPv6      bool
	outputJSON   bool
	prettyJSON   bool
	noColor      bool
	quiet        bool
	showVer      bool
	checkUpdates bool
	timeout      float64
	statusPath   string
	statePath    string
	timeFormat   string
	timeZone     string
	maxPlayers   int
	logDir       string
	logLevel     string
	configFile   string
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("mcstatus", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		// no-op, usage is printed by the app package
	}

	fs.BoolVar(&opts.useIPv4, "4", false, "only use IPv4 to reach the server.")
	fs.BoolVar(&opts.useIPv6, "6", false, "only use IPv6 to reach the server.")
	fs.BoolVar(&opts.outputJSON, "j", false, "print the report to stdout in JSON format.")
	fs.BoolVar(&opts.prettyJSON, "pretty", false,
		"use indentation when using json output format. No effect without the '-j' flag.")
	fs.BoolVar(&opts.noColor, "no-color", false, "do not colorize output.")
	fs.BoolVar(&opts.quiet, "q", false, "only write the status file, print nothing to stdout.")
	fs.Float64Var(&opts.timeout, "t", 0,
		"time to wait for the server, in seconds. Real number allowed. Default 5 ($PROBE_TIMEOUT).")
	fs.StringVar(&opts.statusPath, "status", "", "path of the status file to overwrite ($STATUS_PATH).")
	fs.StringVar(&opts.statePath, "state", "",
		"path of the state file. A .db, .sqlite or .sqlite3 extension selects SQLite ($STATE_PATH).")
	fs.StringVar(&opts.timeFormat, "time-format", "", "strftime pattern for timestamps ($TIME_FORMAT).")
	fs.StringVar(&opts.timeZone, "tz", "", "IANA time zone for timestamps ($TIME_FORMAT_TIMEZONE).")
	fs.IntVar(&opts.maxPlayers, "max-players", 0,
		"capacity to show when the server reports none ($MAX_PLAYERS).")
	fs.StringVar(&opts.logDir, "log-dir", "", "write logs to a rotating file in this directory ($LOG_DIR).")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error ($LOG_LEVEL).")
	fs.StringVar(&opts.configFile, "config", "", "YAML file with default settings ($MCSTATUS_CONFIG).")
	fs.BoolVar(&opts.showVer, "v", false, "show version and exit.")
	fs.BoolVar(&opts.checkUpdates, "u", false, "check for updates and exit.")

	return fs
}

// flagsWithValue lists the flags that consume the following argument.
var flagsWithValue = []string{
	"t", "status", "state", "time-format", "tz", "max-players", "log-dir", "log-level", "config",
}

// permuteArgs moves flags in front of positional arguments because flag
// parsing stops just before the first non-flag argument.
// see: https://pkg.go.dev/flag
func permuteArgs(args []string) ([]string, error) {
	var flagArgs []string
	var nonFlagArgs []string

	for i := 0; i < len(args); i++ {
		v := args[i]
		if len(v) < 2 || v[0] != '-' {
			nonFlagArgs = append(nonFlagArgs, v)
			continue
		}

		optionName := strings.TrimLeft(v, "-")
		if strings.Contains(optionName, "=") || !slices.Contains(flagsWithValue, optionName) {
			flagArgs = append(flagArgs, v)
			continue
		}

		// out of index
		if len(args) <= i+1 {
			return nil, ErrUsageRequested
		}
		// the next flag has come
		optionVal := args[i+1]
		if strings.HasPrefix(optionVal, "-") && optionName != "t" && optionName != "max-players" {
			return nil, ErrUsageRequested
		}
		flagArgs = append(flagArgs, args[i:i+2]...)
		i++
	}

	return slices.Concat(flagArgs, nonFlagArgs), nil
}

// ProcessUserInput resolves the run settings from defaults, the optional YAML
// file, the environment and finally args. It returns ErrUsageRequested,
// ErrVersionRequested, or ErrUpdateCheckRequested for special control flow.
func ProcessUserInput(args []string, lookup config.LookupFunc) (RunConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var opts options
	fs := newFlagSet(&opts)

	permuted, err := permuteArgs(args)
	if err != nil {
		return RunConfig{}, err
	}

	if err := fs.Parse(permuted); err != nil {
		return RunConfig{}, fmt.Errorf("%w: %w", ErrUsageRequested, err)
	}

	if opts.showVer {
		return RunConfig{}, ErrVersionRequested
	}

	if opts.checkUpdates {
		return RunConfig{}, ErrUpdateCheckRequested
	}

	positional := fs.Args()
	if len(positional) > 1 {
		return RunConfig{}, ErrUsageRequested
	}

	if opts.useIPv4 && opts.useIPv6 {
		return RunConfig{}, fmt.Errorf("%w: only one IP version can be specified", ErrUsageRequested)
	}

	cfg := RunConfig{
		Config:  config.Default(),
		UseIPv4: opts.useIPv4,
		UseIPv6: opts.useIPv6,
	}

	cfg.ConfigFile = opts.configFile
	if cfg.ConfigFile == "" {
		if v, ok := lookup(config.EnvConfigFile); ok {
			cfg.ConfigFile = strings.TrimSpace(v)
		}
	}

	if err := config.LoadFile(&cfg.Config, cfg.ConfigFile); err != nil {
		return RunConfig{}, err
	}

	if err := config.ApplyEnv(&cfg.Config, lookup); err != nil {
		return RunConfig{}, err
	}

	if err := setOptions(&cfg, fs, opts); err != nil {
		return RunConfig{}, err
	}

	if len(positional) == 1 {
		cfg.ServerAddress = positional[0]
	}

	if err := cfg.Validate(); err != nil {
		return RunConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.PrinterConfig = mcstatus.PrinterConfig{
		OutputJSON: opts.outputJSON,
		PrettyJSON: opts.prettyJSON,
		NoColor:    opts.noColor,
		Quiet:      opts.quiet,
		StatusPath: cfg.StatusPath,
	}

	return cfg, nil
}

// setOptions assigns the flags the user actually passed, so that an unset
// flag never hides a value from the file or the environment.
func setOptions(cfg *RunConfig, fs *flag.FlagSet, opts options) error {
	var err error

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			if opts.timeout <= 0 {
				err = fmt.Errorf("timeout should be positive, got %v", opts.timeout)
				return
			}
			cfg.ProbeTimeout = config.SecondsToDuration(opts.timeout)
		case "status":
			cfg.StatusPath = opts.statusPath
		case "state":
			cfg.StatePath = opts.statePath
		case "time-format":
			cfg.TimeFormat = opts.timeFormat
		case "tz":
			cfg.TimeZone = opts.timeZone
		case "max-players":
			cfg.MaxPlayers = opts.maxPlayers
		case "log-dir":
			cfg.LogDir = opts.logDir
		case "log-level":
			cfg.LogLevel = opts.logLevel
		}
	})

	return err
}
