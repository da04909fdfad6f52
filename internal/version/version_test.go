package version

import (
	"runtime/debug"
	"testing"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = orig })
}

func withLdflags(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = version, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = v, c, d })
}

func TestGet(t *testing.T) {
	stamped := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d0e"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name       string
		ldVersion  string
		ldCommit   string
		bi         *debug.BuildInfo
		wantVer    string
		wantCommit string
		wantDate   string
		wantString string
	}{
		{"no metadata", "dev", "", nil, "dev", "unknown", "unknown", "dev"},
		{"vcs stamp", "dev", "", stamped, "v0.3.1", "3f2a9c1d0e", "2026-01-02T03:04:05Z", "v0.3.1 (3f2a9c1-dirty)"},
		{"ldflags win", "v1.0.0", "abcdef0123", stamped, "v1.0.0", "abcdef0123", "2026-01-02T03:04:05Z", "v1.0.0 (abcdef0-dirty)"},
		{"devel module", "dev", "", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "dev", "unknown", "unknown", "dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withLdflags(t, tt.ldVersion, tt.ldCommit, "")
			withBuildInfo(t, tt.bi)

			info := Get()
			if info.Version != tt.wantVer || info.GitCommit != tt.wantCommit || info.BuildDate != tt.wantDate {
				t.Errorf("Get() = %+v", info)
			}
			if info.GoVersion == "" || info.Platform == "" {
				t.Errorf("runtime fields missing: %+v", info)
			}
			if got := String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}
