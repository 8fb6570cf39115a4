package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gchat/pkg/orchestrate"
	"gchat/pkg/transcript"
	"gchat/pkg/watcher"
)

var flagPoll bool

// NewWatchCmd builds the watch command: the main mode of operation.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the chat file and answer each saved prompt",
		Long: `Watches the chat file for changes. Whenever the file is saved ending in an
unanswered USER PROMPT:, the accumulated conversation is sent to the API and
the reply is appended. Per-turn errors are logged and watching continues;
only startup errors exit.`,
		RunE: runWatch,
	}
	addTurnFlags(cmd)
	cmd.Flags().BoolVar(&flagPoll, "poll", false, "Poll for changes instead of using filesystem events")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	setupLogging(cfg.Verbose)

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	created, err := transcript.EnsureFile(cfg.ChatFile)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Created chat file at %s. Start your conversation by adding:\n%s\nYour prompt here\n\n",
			cfg.ChatFile, transcript.UserMarker)
	}

	fmt.Println("Running with settings:")
	fmt.Printf("  Chat file:   %s\n", cfg.ChatFile)
	fmt.Printf("  Token level: %d\n", cfg.TokenLevel)
	fmt.Printf("  Temperature: %g\n", cfg.Temperature)
	fmt.Printf("  Timeout:     %d seconds\n", cfg.TimeoutSeconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Process whatever is already in the file before watching, so a prompt
	// written while the tool was down is not missed.
	lastSeen := processTurn(ctx, orch, cfg.ChatFile, watcher.Version{})

	changes, stopWatch, err := startWatcher(ctx, cfg.ChatFile)
	if err != nil {
		return err
	}
	defer stopWatch()

	color.New(color.FgGreen).Printf("Watching %s for changes.\n", cfg.ChatFile)

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Shutting down.")
			return nil
		case <-changes:
			lastSeen = processTurn(ctx, orch, cfg.ChatFile, lastSeen)
		}
	}
}

func startWatcher(ctx context.Context, path string) (<-chan struct{}, func(), error) {
	if flagPoll {
		pw := watcher.NewPoll(path, watcher.DefaultDebounce)
		if err := pw.Start(ctx); err != nil {
			return nil, nil, err
		}
		return pw.Changes(), pw.Stop, nil
	}
	w, err := watcher.New(path, watcher.DefaultDebounce)
	if err != nil {
		return nil, nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, nil, err
	}
	return w.Changes(), w.Stop, nil
}

// turnRunner is the slice of the orchestrator the watch loop needs.
type turnRunner interface {
	RunTurn(ctx context.Context) (orchestrate.Outcome, error)
}

// processTurn runs one turn if the file's version moved past lastSeen and
// returns the version to compare against next time. The version check is what
// keeps the tool's own appends from triggering another turn.
func processTurn(ctx context.Context, orch turnRunner, path string, lastSeen watcher.Version) watcher.Version {
	current, err := watcher.Snapshot(path)
	if err != nil {
		logrus.WithError(err).Error("Failed to stat chat file")
		return lastSeen
	}
	if current == lastSeen {
		return lastSeen
	}

	thinking := color.New(color.FgCyan)
	thinking.Println("Grok is thinking...")

	outcome, err := orch.RunTurn(ctx)
	switch {
	case err != nil:
		color.New(color.FgRed).Println("Grok failed to respond.")
		logrus.WithError(err).Error("Turn failed")
	case outcome == orchestrate.OutcomeAnswered:
		thinking.Println("Grok has thought.")
	}

	after, err := watcher.Snapshot(path)
	if err != nil {
		logrus.WithError(err).Error("Failed to stat chat file")
		return current
	}
	return after
}
