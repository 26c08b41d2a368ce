// Package telegram sends dashboard notifications to a Telegram chat.
//
// Messages are plain sendMessage calls with HTML formatting. The client never
// polls for updates; the dashboard remains the only place to act on a report.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"aduan/internal/api"

	"go.uber.org/zap"
)

// DefaultBaseURL is the Bot API root.
const DefaultBaseURL = "https://api.telegram.org"

// Client represents a Telegram bot client.
//
// Fields:
//   - BotToken: Telegram bot API token
//   - ChatID: Target chat ID for notifications
//   - DebugMode: When true, messages are logged instead of sent
type Client struct {
	BotToken  string
	ChatID    string
	DebugMode bool

	baseURL string
	logger  *zap.Logger
}

// Message represents a Telegram sendMessage payload.
type Message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// NewClient creates a Telegram client.
//
// Returns nil when either the token or the chat id is missing, which every
// method treats as "notifications disabled".
func NewClient(botToken, chatID string, debugMode bool, logger *zap.Logger) *Client {
	if botToken == "" || chatID == "" {
		logger.Warn("⚠️  TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set. Telegram notifications disabled.",
			zap.Bool("token_set", botToken != ""),
			zap.Bool("chat_id_set", chatID != ""))
		return nil
	}

	logger.Info("✓ Telegram configured successfully")
	if debugMode {
		logger.Info("🐛 DEBUG MODE ENABLED - Telegram messages will be simulated")
	}

	return &Client{
		BotToken:  botToken,
		ChatID:    chatID,
		DebugMode: debugMode,
		baseURL:   DefaultBaseURL,
		logger:    logger,
	}
}

// WithBaseURL points the client at another Bot API root.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// doRequest calls a Bot API method with a JSON payload and returns its
// result payload.
func (c *Client) doRequest(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return c.post(ctx, method, "application/json", bytes.NewReader(jsonData))
}

// post sends a prepared body to a Bot API method.
func (c *Client) post(ctx context.Context, method, contentType string, body io.Reader) (json.RawMessage, error) {
	apiURL := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := api.GetHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return nil, fmt.Errorf("Telegram API error: %s", result.Description)
	}

	return result.Result, nil
}

// SendMessage sends HTML-formatted text to the configured chat and returns
// the message id.
func (c *Client) SendMessage(ctx context.Context, text string) (string, error) {
	if c == nil {
		return "", nil
	}

	if c.DebugMode {
		c.logger.Info("🐛 [DEBUG] Would send Telegram message", zap.String("text", text))
		return "", nil
	}

	raw, err := c.doRequest(ctx, "sendMessage", Message{
		ChatID:                c.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send Telegram message: %w", err)
	}

	var sent struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(raw, &sent); err != nil {
		return "", nil
	}
	return strconv.FormatInt(sent.MessageID, 10), nil
}

// SendPhoto uploads a PNG with an HTML caption.
func (c *Client) SendPhoto(ctx context.Context, filename string, png []byte, caption string) error {
	if c == nil {
		return nil
	}

	if c.DebugMode {
		c.logger.Info("🐛 [DEBUG] Would send Telegram photo",
			zap.String("file", filename), zap.Int("bytes", len(png)), zap.String("caption", caption))
		return nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("chat_id", c.ChatID)
	_ = mw.WriteField("caption", caption)
	_ = mw.WriteField("parse_mode", "HTML")
	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return fmt.Errorf("failed to build photo upload: %w", err)
	}
	if _, err := part.Write(png); err != nil {
		return fmt.Errorf("failed to build photo upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build photo upload: %w", err)
	}

	if _, err := c.post(ctx, "sendPhoto", mw.FormDataContentType(), &buf); err != nil {
		return fmt.Errorf("failed to send Telegram photo: %w", err)
	}
	return nil
}

// SendCriticalAlert sends an operator alert that needs attention.
func (c *Client) SendCriticalAlert(ctx context.Context, alertType, detail string) error {
	if c == nil {
		return nil
	}

	c.logger.Info("🚨 Sending critical alert to Telegram...", zap.String("type", alertType))

	message := fmt.Sprintf(
		"🚨 <b>AMARAN - SISTEM ADUAN</b>\n\n"+
			"<b>Jenis:</b> %s\n"+
			"<b>Butiran:</b> %s\n"+
			"<b>Masa:</b> %s",
		Escape(alertType),
		Escape(detail),
		time.Now().Format("2006-01-02 15:04:05"),
	)

	if _, err := c.SendMessage(ctx, message); err != nil {
		return fmt.Errorf("failed to send Telegram alert: %w", err)
	}
	return nil
}
