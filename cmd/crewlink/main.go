package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "crewlink",
		Short: "Terminal client for crewlink game rooms",
		Long: `crewlink joins a social-deduction game room over a websocket,
keeps a local copy of the room state and lets you chat, vote and act
from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: crewlink.yaml in ./config, . or ~/.config/crewlink)")
	pf.String("server", "", "game server base url, e.g. http://localhost:3000")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text or json)")
	pf.Bool("metrics", false, "serve prometheus metrics")
	pf.String("metrics-addr", "", "metrics listen address, e.g. :9090")

	root.AddCommand(
		joinCmd(),
		roomsCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "crewlink %s (%s)\n", version, commit)
		},
	}
}
