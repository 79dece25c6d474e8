package telegram

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/teambots/teambots/src/webclient"
)

// FileLocator resolves a Telegram file id to a download URL.
type FileLocator interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Download fetches a file sent to the bot, capped at maxBytes.
func Download(ctx context.Context, loc FileLocator, client *http.Client, fileID string, maxBytes int64) ([]byte, error) {
	url, err := loc.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram: file url: %w", err)
	}
	if client == nil {
		client = webclient.NewDefault(0)
	}
	data, err := webclient.Fetch(ctx, client, url, 3, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("telegram: download: %w", err)
	}
	return data, nil
}

// SendDocument uploads data as a file attachment.
func SendDocument(s Sender, chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := s.Send(doc); err != nil {
		return fmt.Errorf("telegram: send document: %w", err)
	}
	return nil
}
