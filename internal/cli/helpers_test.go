package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aidanlsb/vaultfm/internal/config"
	"github.com/aidanlsb/vaultfm/internal/logging"
)

var captureStdoutMu sync.Mutex

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	captureStdoutMu.Lock()
	defer captureStdoutMu.Unlock()

	orig := stdout
	var buf bytes.Buffer
	stdout = &buf
	defer func() { stdout = orig }()

	fn()
	return buf.String()
}

// useConfig installs c as the loaded config and restores the globals the
// commands read when the test ends.
func useConfig(t *testing.T, c *config.Config) {
	t.Helper()

	prevCfg, prevJSON, prevYes, prevLogger := cfg, jsonOutput, yesFlag, logger
	prevDiff, prevPreview, prevSkipped := showDiff, showPreview, showSkipped
	prevPass, prevInteractive, prevStdin := progressPassFlag, interactive, stdin
	prevConfigPath, prevInitVault, prevInitForce := resolvedConfigPath, configInitVault, configInitForce
	prevSince, prevChangesPass, prevLimit, prevUpdates := changesSinceFlag, changesPassFlag, changesLimitFlag, changesUpdatesOnly
	t.Cleanup(func() {
		changesSinceFlag, changesPassFlag, changesLimitFlag, changesUpdatesOnly = prevSince, prevChangesPass, prevLimit, prevUpdates
		resolvedConfigPath, configInitVault, configInitForce = prevConfigPath, prevInitVault, prevInitForce
		interactive, stdin = prevInteractive, prevStdin
		cfg, jsonOutput, yesFlag, logger = prevCfg, prevJSON, prevYes, prevLogger
		showDiff, showPreview, showSkipped = prevDiff, prevPreview, prevSkipped
		progressPassFlag = prevPass
	})

	cfg = c
	logger = logging.NoOp()
	showDiff, showPreview, showSkipped = false, false, false
	progressPassFlag = "all"
	interactive = func() bool { return false }
}

func testConfig(vaultPath string) *config.Config {
	c := config.Default()
	c.Vault = vaultPath
	return c
}

type jsonResponse struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

func decodeResponse(t *testing.T, out string) jsonResponse {
	t.Helper()
	var resp jsonResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
	}
	return resp
}

// withContext gives a command the context cobra would set during Execute.
func withContext(t *testing.T, cmd interface{ SetContext(context.Context) }) {
	t.Helper()
	cmd.SetContext(context.Background())
}
