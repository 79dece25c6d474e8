package tasks

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	defaultType     = "заметка"
	defaultTag      = "#inbox"
	defaultDeadline = "нет"
)

// FromReply extracts the JSON object embedded in a secretary reply. When the
// reply holds no usable object the original text becomes a plain note.
func FromReply(user int64, reply, original string) Task {
	fallback := Task{UserID: user, Type: defaultType, Action: original, Tag: defaultTag, Deadline: defaultDeadline}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return normalize(fallback)
	}
	raw := reply[start : end+1]
	if !gjson.Valid(raw) {
		return normalize(fallback)
	}

	fields := gjson.GetMany(raw, "type", "action", "tag", "deadline")
	t := Task{
		UserID:   user,
		Type:     orDefault(fields[0].String(), defaultType),
		Action:   orDefault(fields[1].String(), original),
		Tag:      orDefault(fields[2].String(), defaultTag),
		Deadline: orDefault(fields[3].String(), defaultDeadline),
	}
	return normalize(t)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
