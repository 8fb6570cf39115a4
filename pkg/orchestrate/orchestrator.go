package orchestrate

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gchat/pkg/directive"
	"gchat/pkg/notify"
	"gchat/pkg/transcript"
)

var log = logrus.StandardLogger().WithField("component", "orchestrate")

// maxFileRounds bounds the outer negotiation loop so a model that keeps
// requesting files cannot spin the turn forever.
const maxFileRounds = 10

// CompletionRequest carries one outbound call's inputs.
type CompletionRequest struct {
	Messages    []transcript.Message
	Temperature float64
	MaxTokens   int
}

// CompletionReply is the terminal content of one completion call.
type CompletionReply struct {
	Content   string
	Truncated bool
}

// Completer is the transport boundary. Implementations must treat any failure
// (non-success status, undecodable body, network error) as an error return.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionReply, error)
}

// Options configures a turn's behavior.
type Options struct {
	ChatFile       string
	WorkDir        string  // root for file-request path validation
	Level          int     // starting token-budget level
	MaxLevel       int     // escalation ceiling
	Temperature    float64 // default sampling temperature
	NegotiateFiles bool    // honor the REQUEST FILES grammar
	AutoEscalate   bool    // retry truncated replies with a doubled budget
}

// Outcome summarizes how a turn ended.
type Outcome int

const (
	// OutcomeNoPrompt means the transcript had no unanswered user prompt.
	OutcomeNoPrompt Outcome = iota
	// OutcomeAnswered means a final reply was appended to the transcript.
	OutcomeAnswered
)

// Orchestrator runs turns against a Completer. It holds no conversation
// state of its own: every pass reconstructs the transcript from the file.
type Orchestrator struct {
	completer Completer
	notifier  notify.Notifier
	opts      Options
	state     State
}

// New creates an orchestrator, filling in level defaults.
func New(completer Completer, notifier notify.Notifier, opts Options) *Orchestrator {
	if opts.MaxLevel <= 0 {
		opts.MaxLevel = DefaultMaxLevel
	}
	if opts.Level > opts.MaxLevel {
		opts.Level = opts.MaxLevel
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if notifier == nil {
		notifier = notify.Silent{}
	}
	return &Orchestrator{
		completer: completer,
		notifier:  notifier,
		opts:      opts,
		state:     StateIdle,
	}
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(turnID string, s State) {
	if s == o.state {
		return
	}
	log.WithFields(logrus.Fields{
		"request_id": turnID,
		"from":       o.state.String(),
		"to":         s.String(),
	}).Debug("State transition")
	o.state = s
}

// RunTurn drives one full user turn to a terminal state. The outer loop
// re-reads the transcript on every pass because a file-request round appends
// to it; the inner loop inside runPass holds the parsed transcript fixed. On
// any terminal error the transcript is left untouched and the failure
// feedback fires; the process is expected to log and keep watching.
func (o *Orchestrator) RunTurn(ctx context.Context) (Outcome, error) {
	turnID := uuid.New().String()[:8]

	for round := 0; ; round++ {
		if round >= maxFileRounds {
			o.setState(turnID, StateFailed)
			o.notifier.Failure()
			return OutcomeNoPrompt, fmt.Errorf("aborting after %d file-request rounds", maxFileRounds)
		}

		outcome, again, err := o.runPass(ctx, turnID, round)
		if err != nil {
			o.setState(turnID, StateFailed)
			o.notifier.Failure()
			return outcome, err
		}
		if !again {
			return outcome, nil
		}
	}
}

// runPass performs one outer-loop iteration: read, parse, resolve, expand,
// then the inner escalation loop. again=true signals that a file-request
// artifact was appended and the transcript must be re-parsed.
func (o *Orchestrator) runPass(ctx context.Context, turnID string, round int) (Outcome, bool, error) {
	raw, err := os.ReadFile(o.opts.ChatFile)
	if err != nil {
		return OutcomeNoPrompt, false, fmt.Errorf("reading chat file: %w", err)
	}

	messages := transcript.Parse(string(raw))
	if !transcript.HasPendingPrompt(messages) {
		log.WithField("request_id", turnID).Debug("No user prompt to process")
		o.setState(turnID, StateIdle)
		return OutcomeNoPrompt, false, nil
	}

	params, messages := directive.ExtractParams(messages, o.opts.MaxLevel)
	level := o.opts.Level
	if params.LevelSet {
		level = params.Level
	}
	temperature := o.opts.Temperature
	if params.TempSet {
		temperature = params.Temperature
	}

	for i, msg := range messages {
		if msg.Role == transcript.RoleUser {
			messages[i].Content = directive.Expand(msg.Content)
		}
	}

	log.WithFields(logrus.Fields{
		"request_id":  turnID,
		"round":       round,
		"messages":    len(messages),
		"level":       level,
		"temperature": temperature,
	}).Info("Processing turn")

	return o.completeLoop(ctx, turnID, messages, level, temperature)
}

// completeLoop is the inner loop: it holds messages fixed and re-issues the
// request through budget escalations until the reply is terminal or turns out
// to be a file request. Escalation and negotiation are orthogonal; both are
// re-evaluated on every fresh reply.
func (o *Orchestrator) completeLoop(ctx context.Context, turnID string, messages []transcript.Message, level int, temperature float64) (Outcome, bool, error) {
	for {
		o.setState(turnID, StateAwaitingResponse)
		reply, err := o.completer.Complete(ctx, CompletionRequest{
			Messages:    messages,
			Temperature: temperature,
			MaxTokens:   TokensForLevel(level),
		})
		if err != nil {
			return OutcomeNoPrompt, false, err
		}

		if o.opts.NegotiateFiles {
			if paths, ok := ParseFileRequest(reply.Content); ok {
				if err := ValidateRequestPaths(paths, o.opts.WorkDir); err != nil {
					// Invalid request: the reply is treated as an ordinary
					// answer, not an error.
					log.WithFields(logrus.Fields{"request_id": turnID, "reason": err.Error()}).
						Warn("Rejecting file request, treating reply as a normal answer")
				} else {
					if err := transcript.AppendFileRequest(o.opts.ChatFile, paths); err != nil {
						return OutcomeNoPrompt, false, fmt.Errorf("appending file request: %w", err)
					}
					log.WithFields(logrus.Fields{"request_id": turnID, "files": len(paths)}).
						Info("Model requested files, rescanning transcript")
					o.setState(turnID, StateNegotiatingFiles)
					return OutcomeNoPrompt, true, nil
				}
			}
		}

		if reply.Truncated && o.opts.AutoEscalate && level < o.opts.MaxLevel {
			level++
			log.WithFields(logrus.Fields{
				"request_id": turnID,
				"level":      level,
				"max_tokens": TokensForLevel(level),
			}).Info("Reply truncated, escalating token budget")
			o.setState(turnID, StateEscalating)
			continue
		}

		if reply.Truncated {
			log.WithField("request_id", turnID).
				Warn("Response still truncated at the maximum token budget")
		}

		if err := transcript.AppendReply(o.opts.ChatFile, reply.Content); err != nil {
			return OutcomeNoPrompt, false, fmt.Errorf("appending reply: %w", err)
		}
		o.notifier.Success()
		o.setState(turnID, StateDone)
		return OutcomeAnswered, false, nil
	}
}
