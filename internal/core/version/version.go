// Package version carries build metadata stamped at link time.
package version

// Set via -ldflags "-X 'rektwatch/internal/core/version.Version=v0.1.0'
// -X 'rektwatch/internal/core/version.Commit=abcd' -X 'rektwatch/internal/core/version.Date=2026-10-01'"
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BuildInfo holds version information about the service build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns build info for the named service binary
func Info(service string) BuildInfo {
	if service == "" {
		service = "rektwatch"
	}
	return BuildInfo{
		Service: service,
		Version: Version,
		Commit:  Commit,
		Date:    Date,
	}
}
