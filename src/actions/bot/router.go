package bot

import (
	"strings"
)

// Handler serves one matched update.
type Handler func(c *Context) error

// Predicate decides whether a route applies.
type Predicate func(c *Context) bool

type route struct {
	name  string
	match Predicate
	h     Handler
}

// Router holds ordered routes; the first match wins.
type Router struct {
	routes []route
}

func NewRouter() *Router {
	return &Router{}
}

// Handle appends a route. name only shows up in logs.
func (r *Router) Handle(name string, match Predicate, h Handler) {
	r.routes = append(r.routes, route{name: name, match: match, h: h})
}

// Dispatch runs the first matching handler and reports its name.
func (r *Router) Dispatch(c *Context) (string, bool, error) {
	for _, rt := range r.routes {
		if rt.match(c) {
			return rt.name, true, rt.h(c)
		}
	}
	return "", false, nil
}

// Command matches "/name", "/name args" and "/name@bot".
func Command(name string) Predicate {
	return func(c *Context) bool {
		if c.Message == nil || c.Callback != nil {
			return false
		}
		cmd, _ := splitCommand(c.Message.Text)
		return cmd == name
	}
}

// TextContains matches messages containing sub, case-insensitively.
func TextContains(sub string) Predicate {
	sub = strings.ToLower(sub)
	return func(c *Context) bool {
		return c.Callback == nil && c.Text != "" && strings.Contains(strings.ToLower(c.Text), sub)
	}
}

// TextEquals matches an exact button label.
func TextEquals(s string) Predicate {
	return func(c *Context) bool {
		return c.Callback == nil && strings.TrimSpace(c.Text) == s
	}
}

// InState matches while the user's dialog is at step.
func InState(step string) Predicate {
	return func(c *Context) bool {
		return c.State.Step == step
	}
}

// CallbackPrefix matches inline button presses whose data starts with prefix.
func CallbackPrefix(prefix string) Predicate {
	return func(c *Context) bool {
		return c.Callback != nil && strings.HasPrefix(c.Callback.Data, prefix)
	}
}

// Document matches file uploads.
func Document() Predicate {
	return func(c *Context) bool {
		return c.Callback == nil && c.Message != nil && c.Message.Document != nil
	}
}

// Voice matches voice notes and audio.
func Voice() Predicate {
	return func(c *Context) bool {
		return c.Callback == nil && c.Message != nil && (c.Message.Voice != nil || c.Message.Audio != nil)
	}
}

// AnyText matches any non-command text message.
func AnyText() Predicate {
	return func(c *Context) bool {
		return c.Callback == nil && c.Text != "" && !strings.HasPrefix(c.Text, "/")
	}
}

// All matches when every predicate does.
func All(ps ...Predicate) Predicate {
	return func(c *Context) bool {
		for _, p := range ps {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, args, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(args)
}
