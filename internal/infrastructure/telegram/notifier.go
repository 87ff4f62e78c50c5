package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsharvest/internal/domain"
	"newsharvest/internal/ports"
)

// Notifier sends run digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishRunDigest posts a plain-text run summary to Telegram.
func (n *Notifier) PublishRunDigest(ctx context.Context, result domain.FetchRunResult) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", buildDigest(result))

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

	// The API answers one fixed shape; anything else is a contract breach,
	// not something to search heuristically.
	var ack struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return &domain.SchemaError{Context: "telegram sendMessage", Err: err}
	}
	if !ack.OK {
		return fmt.Errorf("telegram rejected message: %s", ack.Description)
	}

	return nil
}

func buildDigest(result domain.FetchRunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ingestion run %s: %s\n", result.RunID, result.Status)
	fmt.Fprintf(&b, "%d sources, %d failed, %d new articles\n",
		result.SourcesAttempted, result.SourcesFailed, result.TotalNewArticles)

	for _, s := range result.Summaries {
		if s.Status == domain.StatusSuccess {
			continue
		}
		fmt.Fprintf(&b, "- %s (%s): %s", s.SourceName, s.Status, s.Message)
		if s.FetchError != "" {
			fmt.Fprintf(&b, " [%s]", s.FetchError)
		}
		b.WriteString("\n")
	}

	return b.String()
}
