// Package version provides version information for the feeder application.
package version

// Version is the current version of the feeder application.
const Version = "0.3.0"

// AgentString returns the full agent string with versioning.
func AgentString() string {
	return "hl-hip3-deploy@v" + Version
}
