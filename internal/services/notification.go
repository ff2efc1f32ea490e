package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/pkg/logger"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram caps message text at 4096 chars; long bodies are split.
const telegramMaxLen = 4000

// NotificationService delivers contact notifications to workspace owners
// through their configured Telegram bot. Delivery is best-effort by
// contract: callers must never couple persistence to its outcome.
type NotificationService struct {
	db      *gorm.DB
	client  *http.Client
	apiBase string
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		db:      db,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiBase: telegramAPIBase,
	}
}

// ContactNotification carries the fields announced to the owner.
type ContactNotification struct {
	Name    string
	Email   string
	Message string
}

// SendContactNotification notifies the owner of the given workspace slug.
// A workspace without a configured bot token is a silent no-op.
func (s *NotificationService) SendContactNotification(username string, n *ContactNotification) error {
	var ws models.Workspace
	if err := s.db.Where("slug = ?", username).First(&ws).Error; err != nil {
		return fmt.Errorf("workspace %s not found: %w", username, err)
	}

	var setting models.NotificationSetting
	err := s.db.Where("workspace_id = ?", ws.ID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && setting.TelegramBotToken == "") {
		logger.Debug().Str("username", username).Msg("telegram notifications not configured, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	msg := buildContactMessage(n)
	for i, part := range splitMessage(msg, telegramMaxLen) {
		if err := s.sendTelegramMessage(&setting, part); err != nil {
			return fmt.Errorf("telegram send failed (part %d): %w", i+1, err)
		}
	}

	logger.Info().Str("username", username).Msg("contact notification sent")
	return nil
}

func buildContactMessage(n *ContactNotification) string {
	body := n.Message
	if len([]rune(body)) > 200 {
		body = string([]rune(body)[:200]) + "..."
	}

	return fmt.Sprintf("📧 <b>New Portfolio Message</b>\n\n"+
		"👤 <b>From:</b> %s\n"+
		"📧 <b>Email:</b> %s\n"+
		"💬 <b>Message:</b>\n%s", n.Name, n.Email, body)
}

func (s *NotificationService) sendTelegramMessage(setting *models.NotificationSetting, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, setting.TelegramBotToken)
	payload := map[string]interface{}{
		"chat_id":    setting.TelegramChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	return s.postJSON(url, payload)
}

// splitMessage splits a long message into chunks, trying to break at newlines
func splitMessage(msg string, maxLen int) []string {
	if len(msg) <= maxLen {
		return []string{msg}
	}

	var parts []string
	remaining := msg

	for len(remaining) > 0 {
		if len(remaining) <= maxLen {
			parts = append(parts, remaining)
			break
		}

		// Try to find a good break point (newline) within the limit
		chunk := remaining[:maxLen]
		breakPoint := maxLen

		for i := len(chunk) - 1; i > maxLen/2; i-- {
			if chunk[i] == '\n' {
				breakPoint = i + 1
				break
			}
		}

		parts = append(parts, remaining[:breakPoint])
		remaining = remaining[breakPoint:]
	}

	return parts
}

func (s *NotificationService) postJSON(url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
