package orchestrate

import (
	"context"

	"gchat/pkg/grok"
)

// GrokCompleter adapts the grok client to the Completer boundary.
type GrokCompleter struct {
	client *grok.Client
}

// NewGrokCompleter wraps an API client for use by the orchestrator.
func NewGrokCompleter(client *grok.Client) *GrokCompleter {
	return &GrokCompleter{client: client}
}

// Complete sends the message list to the chat-completions API.
func (g *GrokCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionReply, error) {
	outbound := make([]grok.Message, len(req.Messages))
	for i, m := range req.Messages {
		outbound[i] = grok.Message{Role: string(m.Role), Content: m.Content}
	}

	reply, err := g.client.Complete(ctx, outbound, req.Temperature, req.MaxTokens)
	if err != nil {
		return nil, err
	}
	return &CompletionReply{
		Content:   reply.Content,
		Truncated: reply.Truncated(),
	}, nil
}

var _ Completer = (*GrokCompleter)(nil)
