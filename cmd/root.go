// Package cmd wires the gchat command-line interface.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gchat",
		Short: "Chat with Grok by editing a plain-text transcript file",
		Long: `gchat turns a plain text file into a chat session. Write a prompt under the
USER PROMPT: marker, save, and the reply is appended under GROK RESPONSE:,
followed by a fresh marker for your next turn.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a gchat.yml config file")

	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func setupLogging(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
