package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Status tracks a progress message so it can be edited and removed later.
type Status struct {
	s         Sender
	chatID    int64
	messageID int
}

// NewStatus posts text and returns a handle to it. A failed post yields a
// nil handle, whose methods are no-ops.
func NewStatus(s Sender, chatID int64, text string) (*Status, error) {
	a := deliver(s, chatID, text, nil)
	if !a.OK() {
		return nil, a.Err
	}
	return &Status{s: s, chatID: chatID, messageID: a.Message.MessageID}, nil
}

// AttachStatus wraps an existing message, e.g. the one carrying a keyboard.
func AttachStatus(s Sender, chatID int64, messageID int) *Status {
	return &Status{s: s, chatID: chatID, messageID: messageID}
}

// Update replaces the status text.
func (st *Status) Update(text string) error {
	if st == nil {
		return nil
	}
	var err error
	for _, r := range Renderers {
		edit := tgbotapi.NewEditMessageText(st.chatID, st.messageID, r.Render(text))
		edit.ParseMode = r.ParseMode
		if _, err = st.s.Request(edit); err == nil || notModified(err) {
			return nil
		}
	}
	return err
}

// Delete removes the status message.
func (st *Status) Delete() error {
	if st == nil {
		return nil
	}
	_, err := st.s.Request(tgbotapi.NewDeleteMessage(st.chatID, st.messageID))
	return err
}

// MessageID of the tracked message.
func (st *Status) MessageID() int {
	if st == nil {
		return 0
	}
	return st.messageID
}

func notModified(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}

// Typing shows the "typing…" chat action.
func Typing(s Sender, chatID int64) {
	_, _ = s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}

// AnswerCallback acknowledges a button press with an optional toast.
func AnswerCallback(s Sender, callbackID, text string) {
	_, _ = s.Request(tgbotapi.NewCallback(callbackID, text))
}
