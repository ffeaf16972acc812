package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/versuslab/versus/internal/testvotes"
)

// Default configuration constants.
const (
	defaultVotes       = 1000
	defaultVoterMult   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		votes   = flag.Int("votes", defaultVotes, "Total number of votes to cast")
		voters  = flag.Int("voters", runtime.NumCPU()*defaultVoterMult, "Number of concurrent voter sessions")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testvotes.ShowHelp()
		return
	}

	if err := testvotes.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testvotes.Config{
		BaseURL: *baseURL,
		Votes:   *votes,
		Voters:  *voters,
		Timeout: *timeout,
		LogFile: *logFile,
		Verbose: *verbose,
	}

	if err := testvotes.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
