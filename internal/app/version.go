// Package app provides the application container wiring all dependencies.
package app

// Build-time variables, injected via ldflags.
var (
	Version   string = "1.0.0"
	GitTag    string = "2000.01.01.release"
	BuildTime string = "2000-01-01T00:00:00+0800"
)

const (
	// Name application name
	Name = "Markdown Workspace Service"
)
