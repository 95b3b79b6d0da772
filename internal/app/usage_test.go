package app_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v45/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptyonic/mcstatus/internal/app"
	"github.com/ptyonic/mcstatus/internal/testdata"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.1.9", 1},
		{"1.0", "1.0.0", -1},
		{"2.0.0.1", "2.0.0", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, app.CompareVersions(tt.v1, tt.v2), "%s vs %s", tt.v1, tt.v2)
	}
}

func newGitHubClient(t *testing.T, tag string) *github.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/ptyonic/mcstatus/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"` + tag + `"}`))
	}))
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return client
}

func TestCheckForUpdates(t *testing.T) {
	oldVersion := app.Version
	t.Cleanup(func() { app.Version = oldVersion })
	app.Version = "1.2.0"

	tests := []struct {
		tag  string
		want string
	}{
		{"v1.3.0", "Found newer version 1.3.0"},
		{"v1.1.0", "is newer than the latest release 1.1.0"},
		{"1.2.0", "mcstatus is on the latest version: 1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			msg, err := app.CheckForUpdates(t.Context(), newGitHubClient(t, tt.tag))
			require.NoError(t, err)
			assert.Contains(t, msg, tt.want)
		})
	}
}

func TestCheckForUpdates_BadTag(t *testing.T) {
	_, err := app.CheckForUpdates(t.Context(), newGitHubClient(t, "nightly"))
	assert.Error(t, err)
}

func TestPrintUsage(t *testing.T) {
	out := testdata.CaptureOutput(t, app.PrintUsage)

	for _, flag := range []string{"-4", "-t", "--status", "--state", "--tz", "--time-format", "--max-players", "-j", "-q"} {
		assert.Contains(t, out, "  "+flag+" : ")
	}
}

func TestPrintVersion(t *testing.T) {
	oldVersion := app.Version
	t.Cleanup(func() { app.Version = oldVersion })
	app.Version = "9.9.9"

	out := testdata.CaptureOutput(t, app.PrintVersion)
	assert.Equal(t, "mcstatus version 9.9.9\n", out)
}
