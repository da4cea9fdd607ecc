// Tvremote is a network remote control for smart TVs.
//
// It discovers Roku, Samsung, LG and Apple TV devices on the local network
// over SSDP and DNS-SD, remembers the last device you connected to, and
// sends button presses using each vendor's control protocol.
//
// Usage:
//
//	tvremote [command] [flags]
//
// Running without arguments in a terminal opens the full-screen remote.
// See 'tvremote --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/tvremote/internal/config"
	"github.com/muurk/tvremote/internal/logging"
	"github.com/muurk/tvremote/internal/tui"
	"github.com/muurk/tvremote/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

// cfg is loaded once by the root command's pre-run hook
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "tvremote",
	Short: "Network remote control for smart TVs",
	Long: `Discover smart TVs on your network and control them from the terminal.

Supported devices: Roku (ECP), Samsung (Tizen WebSocket), LG (webOS/ROAP)
and Apple TV (legacy ctrl-int). The last connected TV is remembered, so
'tvremote send' and 'tvremote remote' work without scanning again.

If no command is given and stdout is a terminal, the interactive remote
launches automatically.`,
	Version:       version.Full(),
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := logLevel
		if level == "" {
			level = cfg.LogLevel
		}
		return logging.Initialize(level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !tui.IsTerminal(os.Stdout) {
			return cmd.Help()
		}
		return runRemote(cmd, args)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is $XDG_CONFIG_HOME/tvremote/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default silent)")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tvremote %s (commit: %s)\n", version.Version, version.Commit)
	},
}
