// Package buildinfo holds release metadata injected with -ldflags -X.
package buildinfo

// Empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
