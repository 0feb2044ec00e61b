// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Telemetry server (websocket frames, Prometheus metrics), YAML body catalogs
// 0.2.0 - Landing phase machine, touchdown scoring, retro-thrust autopilot
// 0.1.0 - Initial release: flight HUD, orbit view, trajectory prediction, headless mode
