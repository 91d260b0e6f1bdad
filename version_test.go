package tlrelay

import (
	"strings"
	"testing"
)

func TestFullVersion(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = "0123456789abcdef"
	if got := FullVersion(); got != Version+"+0123456" {
		t.Errorf("FullVersion() = %q", got)
	}

	GitCommit = "abc"
	if got := FullVersion(); got != Version+"+abc" {
		t.Errorf("FullVersion() = %q, want short commits kept whole", got)
	}

	// Without ldflags the toolchain's VCS stamp may or may not be present.
	GitCommit = "unknown"
	if got := FullVersion(); !strings.HasPrefix(got, Version) {
		t.Errorf("FullVersion() = %q, want prefix %q", got, Version)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, Name+"/"+Version) {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(ua, Repository) {
		t.Errorf("UserAgent() should carry the repository URL: %q", ua)
	}
}
