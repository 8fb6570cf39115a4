package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"gchat/pkg/orchestrate"
	"gchat/pkg/transcript"
)

// NewRunCmd builds the run command: process the chat file once and exit.
// Useful for scripting and for editors that invoke a command on save.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process the chat file once and exit",
		RunE:  runOnce,
	}
	addTurnFlags(cmd)
	return cmd
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Verbose)

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	if _, err := transcript.EnsureFile(cfg.ChatFile); err != nil {
		return err
	}

	outcome, err := orch.RunTurn(context.Background())
	if err != nil {
		return fmt.Errorf("turn failed: %w", err)
	}
	if outcome == orchestrate.OutcomeNoPrompt {
		fmt.Println("No user prompt to process in chat file.")
		return nil
	}
	color.New(color.FgGreen).Println("Grok has thought.")
	return nil
}
