package logging

import (
	"context"
	"errors"
	"net"
	"strings"
)

func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

// IsMarkupRejected reports whether Telegram refused a message because it could
// not parse the entities of the selected parse mode.
func IsMarkupRejected(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "can't parse entities") ||
		strings.Contains(msg, "can't find end of") ||
		strings.Contains(msg, "unsupported start tag") ||
		strings.Contains(msg, "unexpected end tag")
}

func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
