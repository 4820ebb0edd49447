package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/samemean/internal/widgetsim"
	"github.com/okian/samemean/pkg/logger"
)

// Default configuration constants.
const (
	defaultVisitors    = 200
	defaultActions     = 25
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		visitors = flag.Int("visitors", defaultVisitors, "Number of simulated visitors")
		actions  = flag.Int("actions", defaultActions, "Actions per visitor")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed     = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Seed for the random walk")
		verbose  = flag.Bool("verbose", false, "Log every state mismatch")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		widgetsim.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &widgetsim.Config{
		BaseURL:           *baseURL,
		Visitors:          *visitors,
		ActionsPerVisitor: *actions,
		Workers:           *workers,
		Timeout:           *timeout,
		Seed:              *seed,
		Verbose:           *verbose,
	}

	if _, err := widgetsim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
