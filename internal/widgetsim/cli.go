package widgetsim

import "os"

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Same Mean Widget Simulator
==========================

Drives a running widget server with concurrent simulated visitors. Each
visitor mounts a widget, performs random selections and panel toggles, and
checks every returned state against the expected one.

Usage:
  go run ./cmd/widget-sim [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -visitors int
        Number of simulated visitors (default 200)
  -actions int
        Actions per visitor (default 25)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 10s)
  -seed uint
        Seed for the random walk (default: current time)
  -verbose
        Log every state mismatch
  -help
        Show this help message
`)
}
