package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yigit/coursewatch/internal/pkg/apperrors"
	"github.com/yigit/coursewatch/internal/pkg/logger"
)

// telegramMessageLimit stays under the Bot API's 4096-character cap with room
// for the chunk marker.
const telegramMessageLimit = 4000

// TelegramNotifier delivers reports through the Telegram Bot API.
type TelegramNotifier struct {
	token  string
	chatID string
	dryRun bool
	client *http.Client
	apiURL string
}

// NewTelegramNotifier creates a TelegramNotifier. In dry-run mode messages
// are logged instead of sent.
func NewTelegramNotifier(token, chatID string, dryRun bool) *TelegramNotifier {
	return &TelegramNotifier{
		token:  token,
		chatID: chatID,
		dryRun: dryRun,
		client: &http.Client{Timeout: 30 * time.Second},
		apiURL: "https://api.telegram.org",
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends the report, chunked below the Bot API message limit on course
// boundaries. Any chunk failure aborts delivery with a TransportError so the
// reporting window stays open for the next invocation.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) error {
	chunks := SplitMessage(text, telegramMessageLimit)

	if n.dryRun {
		logger.Info().Int("chunks", len(chunks)).Msg("Dry run, skipping Telegram delivery")
		return nil
	}

	for i, chunk := range chunks {
		if len(chunks) > 1 {
			chunk = fmt.Sprintf("(%d/%d)\n%s", i+1, len(chunks), chunk)
		}
		if err := n.sendMessage(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (n *TelegramNotifier) sendMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: n.chatID, Text: text})
	if err != nil {
		return apperrors.NewTransportError("failed to encode Telegram request", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewTransportError("failed to build Telegram request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return apperrors.NewTransportError("Telegram request failed", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed sendMessageResponse
	_ = json.Unmarshal(respBody, &parsed)
	if resp.StatusCode != http.StatusOK || !parsed.OK {
		return apperrors.NewTransportError(
			fmt.Sprintf("Telegram API returned status %d: %s", resp.StatusCode, parsed.Description), nil)
	}
	return nil
}
