package tlrelay

import "runtime/debug"

// Release metadata. GitCommit and BuildDate are set by the release build:
//
//	go build -ldflags "-X github.com/ZaguanLabs/tlrelay.GitCommit=$(git rev-parse HEAD)"
const (
	Name        = "tlrelay"
	Description = "Structure-preserving translation relay with LLM failover"
	Version     = "0.3.0"
	Repository  = "https://github.com/ZaguanLabs/tlrelay"
)

// Build information, overridden at link time.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// commit returns GitCommit, or the VCS revision stamped by the Go
// toolchain when the binary was built without ldflags.
func commit() string {
	if GitCommit != "unknown" && GitCommit != "" {
		return GitCommit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

// FullVersion returns Version with the short commit appended, e.g.
// "0.3.0+0123456".
func FullVersion() string {
	c := commit()
	if c == "" {
		return Version
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return Version + "+" + c
}

// UserAgent identifies tlrelay to translation providers. It carries the
// repository URL so providers can reach the operator.
func UserAgent() string {
	return Name + "/" + FullVersion() + " (+" + Repository + ")"
}
