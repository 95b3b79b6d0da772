package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/go-github/v45/github"
)

// Version is set at compile time
var Version = ""

const (
	Owner = "ptyonic"
	Repo  = "mcstatus"
)

// PrintUsage prints how mcstatus should be run
func PrintUsage() {
	executableName := filepath.Base(os.Args[0])

	fmt.Printf("\nmcstatus version %s\n\n", Version)
	fmt.Printf("Try running %s like:\n", executableName)
	fmt.Printf("%s [flags] [server address]. For example:\n", executableName)
	fmt.Printf("%s -status /var/www/status.txt play.example.com\n", executableName)
	fmt.Printf("\n[optional flags]\n")

	newFlagSet(&options{}).VisitAll(func(f *flag.Flag) {
		flagName := f.Name
		if len(f.Name) > 1 {
			flagName = "-" + flagName
		}

		fmt.Printf("  -%s : %s\n", flagName, f.Usage)
	})
}

func compareVersions(v1, v2 string) int {
	parts1 := strings.Split(v1, ".")
	parts2 := strings.Split(v2, ".")

	for i := range min(len(parts1), len(parts2)) {
		n1, _ := strconv.Atoi(parts1[i])
		n2, _ := strconv.Atoi(parts2[i])

		if n1 < n2 {
			return -1
		}
		if n1 > n2 {
			return 1
		}
	}

	// for cases in which version numbers differ in length
	if len(parts1) < len(parts2) {
		return -1
	}

	if len(parts1) > len(parts2) {
		return 1
	}

	return 0
}

// PrintVersion displays the version
func PrintVersion() {
	fmt.Printf("mcstatus version %s\n", Version)
}

var versionPattern = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)$`)

// CheckForUpdates compares Version with the latest GitHub release and returns
// a message for the user.
func CheckForUpdates(ctx context.Context, c *github.Client) (string, error) {
	if c == nil {
		c = github.NewClient(nil)
	}

	// unauthenticated requests from the same IP are limited to 60 per hour
	latestRelease, _, err := c.Repositories.GetLatestRelease(ctx, Owner, Repo)
	if err != nil {
		return "", fmt.Errorf("check for updates: %w", err)
	}

	latestTagName := latestRelease.GetTagName()
	latestVersion := versionPattern.FindStringSubmatch(latestTagName)

	if len(latestVersion) == 0 {
		return "", fmt.Errorf("version name does not match expected format: %s", latestTagName)
	}

	switch compareVersions(strings.TrimPrefix(Version, "v"), latestVersion[1]) {
	case -1:
		return fmt.Sprintf("Found newer version %s\nPlease update mcstatus from the URL below:\nhttps://github.com/%s/%s/releases/tag/%s",
			latestVersion[1], Owner, Repo, latestTagName), nil
	case 1:
		return fmt.Sprintf("Current version %s is newer than the latest release %s",
			Version, latestVersion[1]), nil
	default:
		return fmt.Sprintf("mcstatus is on the latest version: %s", Version), nil
	}
}
