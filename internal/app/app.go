package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ptyonic/mcstatus"
	"github.com/ptyonic/mcstatus/dns"
	"github.com/ptyonic/mcstatus/internal/config"
	"github.com/ptyonic/mcstatus/internal/logging"
	"github.com/ptyonic/mcstatus/pingers"
	"github.com/ptyonic/mcstatus/state"
	"github.com/ptyonic/mcstatus/status"
	"github.com/ptyonic/mcstatus/timefmt"
)

// Run executes one probe with the process arguments and environment and
// returns an exit code
func Run() int {
	return RunArgs(context.Background(), os.Args[1:], os.LookupEnv)
}

// RunArgs is Run with explicit arguments and environment.
func RunArgs(ctx context.Context, args []string, lookup config.LookupFunc) int {
	cfg, err := ProcessUserInput(args, lookup)
	if err != nil {
		return handleError(ctx, err, nil)
	}

	log, err := logging.NewLogger(cfg.LogDir, cfg.Level())
	if err != nil {
		return handleError(ctx, err, nil)
	}
	defer func() { _ = log.Sync() }()

	log = log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("server", cfg.ServerAddress),
	)

	cfg.PrinterConfig.Formatter = buildFormatter(cfg.Config, log)

	printer, err := mcstatus.NewPrinter(cfg.PrinterConfig)
	if err != nil {
		return handleError(ctx, err, nil)
	}

	return probeAndReport(ctx, cfg, printer, log, time.Now)
}

func buildFormatter(cfg config.Config, log *zap.Logger) timefmt.Formatter {
	loc, err := timefmt.LoadLocation(cfg.TimeZone)
	if err != nil {
		log.Warn("time_zone_fallback", zap.String("time_zone", cfg.TimeZone), zap.Error(err))
	}
	return timefmt.NewFormatter(cfg.TimeFormat, loc)
}

func probeAndReport(ctx context.Context, cfg RunConfig, printer mcstatus.Printer, log *zap.Logger, now func() time.Time) int {
	store := state.Open(cfg.StatePath, state.WithLogger(log))
	previous := store.Load(ctx)

	log.Debug("state_loaded",
		zap.String("path", cfg.StatePath),
		zap.String("last_online", age(previous.OnlineAt)),
		zap.String("last_players", age(previous.PlayersAt)))

	outcome := probeServer(ctx, cfg, log)

	next, report := status.Evaluate(outcome, previous, now())

	exitCode := 0

	if err := store.Save(ctx, next); err != nil {
		log.Error("state_save_failed", zap.String("path", cfg.StatePath), zap.Error(err))
		printError(err, printer)
		exitCode = 1
	} else {
		log.Debug("state_saved", zap.String("path", cfg.StatePath))
	}

	if err := printer.PrintReport(&report); err != nil {
		log.Error("report_write_failed", zap.String("path", cfg.StatusPath), zap.Error(err))
		printError(err, printer)
		exitCode = 1
	}

	if err := printer.Done(); err != nil {
		log.Error("printer_close_failed", zap.Error(err))
		exitCode = 1
	}

	log.Info("probe_finished",
		zap.Stringer("body", report.Body),
		zap.Int("players", report.Players),
		zap.Int64("latency_ms", report.LatencyMillis()))

	return exitCode
}

// probeServer resolves the configured address and pings it once. Every
// failure along the way becomes a status.Failure.
func probeServer(ctx context.Context, cfg RunConfig, log *zap.Logger) status.Outcome {
	ctx, cancel := context.WithTimeout(ctx, cfg.ProbeTimeout)
	defer cancel()

	var resolverOpts []dns.ResolverOption
	if cfg.UseIPv4 {
		resolverOpts = append(resolverOpts, dns.WithIPv4Only())
	} else if cfg.UseIPv6 {
		resolverOpts = append(resolverOpts, dns.WithIPv6Only())
	}

	target, err := dns.NewResolver(resolverOpts...).LookupServer(ctx, cfg.ServerAddress)
	if err != nil {
		log.Info("probe_failed", zap.String("stage", "resolve"), zap.Error(err))
		return status.Failure{Err: err}
	}

	log.Debug("server_resolved",
		zap.String("host", target.Host),
		zap.Stringer("addr", target.AddrPort()),
		zap.Bool("srv", target.ViaSRV))

	pinger := pingers.NewMinecraftPinger(target.IP, target.Port,
		pingers.WithServerName(target.ServerName),
		pingers.WithTimeout(cfg.ProbeTimeout))

	prober := mcstatus.NewProber(pinger,
		mcstatus.WithTimeout(cfg.ProbeTimeout),
		mcstatus.WithFallbackCapacity(cfg.MaxPlayers),
		mcstatus.WithLogger(log))

	outcome := prober.Probe(ctx)
	if failure, ok := outcome.(status.Failure); ok {
		log.Info("probe_failed", zap.String("stage", "ping"), zap.Error(failure.Err))
	}

	return outcome
}

func age(ts state.Timestamp) string {
	if !ts.Valid {
		return "never"
	}
	return humanize.Time(ts.Time)
}

func handleError(ctx context.Context, err error, printer mcstatus.Printer) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, ErrUsageRequested) {
		PrintUsage()
		return 1
	}

	if errors.Is(err, ErrVersionRequested) {
		PrintVersion()
		return 0
	}

	if errors.Is(err, ErrUpdateCheckRequested) {
		msg, checkErr := CheckForUpdates(ctx, nil)
		if checkErr != nil {
			printError(checkErr, printer)
			return 1
		}
		fmt.Println(msg)
		return 0
	}

	printError(err, printer)
	return 1
}

func printError(err error, printer mcstatus.Printer) {
	if printer != nil {
		printer.PrintError("%v", err)
		return
	}

	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
