package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/aidanlsb/vaultfm/internal/buildinfo"
)

func TestCurrentVersionInfoFromBuildInfo(t *testing.T) {
	prevRead := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = prevRead
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.24.1",
			Main: debug.Module{
				Path:    "github.com/aidanlsb/vaultfm",
				Version: "v0.3.0",
			},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.time", Value: "2026-02-14T17:00:00Z"},
				{Key: "vcs.modified", Value: "true"},
				{Key: "GOOS", Value: "windows"},
				{Key: "GOARCH", Value: "amd64"},
			},
		}, true
	}

	info := currentVersionInfo()

	if info.Version != "v0.3.0" {
		t.Fatalf("Version = %q, want %q", info.Version, "v0.3.0")
	}
	if info.ModulePath != "github.com/aidanlsb/vaultfm" {
		t.Fatalf("ModulePath = %q, want %q", info.ModulePath, "github.com/aidanlsb/vaultfm")
	}
	if info.Commit != "abc123" {
		t.Fatalf("Commit = %q, want %q", info.Commit, "abc123")
	}
	if info.CommitTime != "2026-02-14T17:00:00Z" {
		t.Fatalf("CommitTime = %q, want %q", info.CommitTime, "2026-02-14T17:00:00Z")
	}
	if !info.Modified {
		t.Fatal("Modified = false, want true")
	}
	if info.GOOS != "windows" || info.GOARCH != "amd64" {
		t.Fatalf("platform = %s/%s, want windows/amd64", info.GOOS, info.GOARCH)
	}
}

func TestCurrentVersionInfoFallbackWhenBuildInfoMissing(t *testing.T) {
	prevRead := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = prevRead
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return nil, false
	}

	info := currentVersionInfo()

	if info.Version != "devel" {
		t.Fatalf("Version = %q, want %q", info.Version, "devel")
	}
	if info.ModulePath != defaultModulePath {
		t.Fatalf("ModulePath = %q, want %q", info.ModulePath, defaultModulePath)
	}
	if info.GoVersion != runtime.Version() {
		t.Fatalf("GoVersion = %q, want runtime %q", info.GoVersion, runtime.Version())
	}
}

func TestCurrentVersionInfoUsesLdflags(t *testing.T) {
	prevRead := readBuildInfo
	prevVersion, prevCommit := buildinfo.Version, buildinfo.Commit
	t.Cleanup(func() {
		readBuildInfo = prevRead
		buildinfo.Version, buildinfo.Commit = prevVersion, prevCommit
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	buildinfo.Version = "v1.0.0"
	buildinfo.Commit = "feedface"

	info := currentVersionInfo()
	if info.Version != "v1.0.0" {
		t.Fatalf("Version = %q, want %q", info.Version, "v1.0.0")
	}
	if info.Commit != "feedface" {
		t.Fatalf("Commit = %q, want %q", info.Commit, "feedface")
	}
}

func TestVersionCommandOutput(t *testing.T) {
	prevRead := readBuildInfo
	prevJSON := jsonOutput
	t.Cleanup(func() {
		readBuildInfo = prevRead
		jsonOutput = prevJSON
	})

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.24.1",
			Main: debug.Module{
				Path:    "github.com/aidanlsb/vaultfm",
				Version: "(devel)",
			},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "deadbeef"},
				{Key: "vcs.modified", Value: "false"},
				{Key: "GOOS", Value: "darwin"},
				{Key: "GOARCH", Value: "arm64"},
			},
		}, true
	}

	t.Run("json", func(t *testing.T) {
		jsonOutput = true
		out := captureStdout(t, func() {
			if err := versionCmd.RunE(versionCmd, nil); err != nil {
				t.Fatalf("versionCmd.RunE: %v", err)
			}
		})

		var resp struct {
			OK   bool        `json:"ok"`
			Data versionInfo `json:"data"`
		}
		if err := json.Unmarshal([]byte(out), &resp); err != nil {
			t.Fatalf("expected JSON output, got parse error: %v; out=%s", err, out)
		}
		if !resp.OK {
			t.Fatalf("expected ok=true; out=%s", out)
		}
		if resp.Data.Version != "devel" {
			t.Fatalf("Version = %q, want %q", resp.Data.Version, "devel")
		}
		if resp.Data.Commit != "deadbeef" {
			t.Fatalf("Commit = %q, want %q", resp.Data.Commit, "deadbeef")
		}
	})

	t.Run("text", func(t *testing.T) {
		jsonOutput = false
		out := captureStdout(t, func() {
			if err := versionCmd.RunE(versionCmd, nil); err != nil {
				t.Fatalf("versionCmd.RunE: %v", err)
			}
		})
		if !strings.HasPrefix(out, "vaultfm devel\n") {
			t.Fatalf("unexpected output: %q", out)
		}
		if !strings.Contains(out, "commit: deadbeef\n") {
			t.Fatalf("missing commit line: %q", out)
		}
		if !strings.Contains(out, "darwin/arm64") {
			t.Fatalf("missing platform: %q", out)
		}
	})
}
