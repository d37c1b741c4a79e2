package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

// Notifier pings the editors' Telegram chat when a draft is ready for
// review. Best effort; the pipeline logs but ignores failures here.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.ReviewNotifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyDraft posts a short review summary to Telegram.
func (n *Notifier) NotifyDraft(ctx context.Context, saved domain.SavedDraft, title string, sectionCount int) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	message := fmt.Sprintf("Draft newsletter ready for review\n%s\nSections: %d\nID: %s",
		title, sectionCount, saved.ID)

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
