package core

import "context"

// Message represents a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Request is one completion call: a system instruction plus the user's text.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float64
}

// Messages returns the request as role turns for providers that support them.
func (r Request) Messages() []Message {
	out := make([]Message, 0, 2)
	if r.System != "" {
		out = append(out, Message{Role: "system", Content: r.System})
	}
	return append(out, Message{Role: "user", Content: r.User})
}

// Combined folds system and user text into one prompt for providers that
// take a single string.
func (r Request) Combined() string {
	if r.System == "" {
		return r.User
	}
	return r.System + "\n\n" + r.User
}

// Response carries the reply text and the model that actually produced it.
type Response struct {
	Content string
	Model   string
}

// Client is a provider-agnostic interface for the single completion call the bots need.
type Client interface {
	Name() string
	Respond(ctx context.Context, req Request) (Response, error)
}

// ModelInfo describes a model advertised by a provider.
type ModelInfo struct {
	Name    string
	Actions []string
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
