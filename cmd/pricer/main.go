package main

import (
	"fmt"
	"os"

	"idb-pricer/internal/cli"
	"idb-pricer/internal/config"
	"idb-pricer/internal/logging"
)

func main() {
	configDir := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pricer: %v\n", err)
		os.Exit(1)
	}

	// Command output owns stdout; logs go to the rotating file only.
	logCfg := logging.DefaultLogConfig()
	logCfg.Console = false
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
