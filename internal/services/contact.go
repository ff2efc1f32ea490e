package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/pkg/logger"
	"github.com/codexx/academy/backend/pkg/response"
)

// Message bodies are capped before persistence.
const maxMessageRunes = 5000

// RateLimitCategoryContact keys the contact form's rate limiter.
const RateLimitCategoryContact = "portfolio_contact"

// RateAllower is the collaborator interface for the per-category rate
// limiter; the middleware implementation satisfies it.
type RateAllower interface {
	Allow(category, ip string) bool
}

// ContactService runs the inbound contact pipeline: validate, persist,
// then hand the notification to the outbound queue.
type ContactService struct {
	db      *gorm.DB
	limiter RateAllower
	queue   TaskQueue
}

func NewContactService(db *gorm.DB, limiter RateAllower, queue TaskQueue) *ContactService {
	return &ContactService{db: db, limiter: limiter, queue: queue}
}

// ContactRequest mirrors the public contact form fields.
type ContactRequest struct {
	Website        string `form:"website"` // honeypot, must stay empty
	Name           string `form:"name"`
	Email          string `form:"email"`
	Message        string `form:"message"`
	PortfolioOwner string `form:"portfolio_owner"`
	RequestType    string `form:"request_type"`
	InterestArea   string `form:"interest_area"`
	Seriousness    string `form:"seriousness"`
	ContactPref    string `form:"contact_pref"`
	Company        string `form:"company"`
}

// SubmitResult reports what the pipeline did. Deflected submissions look
// like successes to the caller but persist nothing.
type SubmitResult struct {
	Deflected bool
	MessageID uint
	Reference string
}

// Submit runs the validation pipeline, short-circuiting at the first
// failing stage. Stage order matters: the honeypot fires before the rate
// limiter so bots cannot exhaust a visitor's budget.
func (s *ContactService) Submit(req *ContactRequest, ip string) (*SubmitResult, error) {
	if req.Website != "" {
		logger.Info().Str("ip", ip).Msg("contact honeypot triggered, deflecting")
		return &SubmitResult{Deflected: true}, nil
	}

	if s.limiter != nil && !s.limiter.Allow(RateLimitCategoryContact, ip) {
		return nil, response.NewTooManyRequests("Too many requests.")
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	body := strings.TrimSpace(req.Message)
	owner := strings.TrimSpace(req.PortfolioOwner)

	if name == "" || email == "" || body == "" || owner == "" {
		return nil, response.NewBadRequest("Required fields missing.")
	}

	var ws models.Workspace
	if err := s.db.Where("slug = ?", owner).First(&ws).Error; err != nil {
		logger.Error().Err(err).Str("username", owner).Msg("workspace not found for contact submission")
		LogError("contact", "workspace_lookup", "workspace not found: "+owner, ip, nil)
		return nil, response.NewBadRequest("Error sending message. Please try again.")
	}

	msg := models.Message{
		WorkspaceID:  ws.ID,
		Reference:    uuid.NewString(),
		Name:         name,
		Email:        email,
		Message:      truncateRunes(body, maxMessageRunes),
		IsRead:       false,
		Category:     "portfolio",
		SenderRole:   "visitor",
		RequestType:  strings.TrimSpace(req.RequestType),
		InterestArea: strings.TrimSpace(req.InterestArea),
		Seriousness:  strings.TrimSpace(req.Seriousness),
		ContactPref:  strings.TrimSpace(req.ContactPref),
		Company:      strings.TrimSpace(req.Company),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&msg).Error
	})
	if err != nil {
		logger.Error().Err(err).Str("username", owner).Msg("contact message persistence failed")
		LogError("contact", "persist", "message insert failed: "+err.Error(), ip, nil)
		return nil, response.NewServerError("Error sending message. Please try again.")
	}

	logger.Info().Str("username", owner).Uint("message_id", msg.ID).Msg("portfolio message saved")

	// Notification is best-effort and decoupled: a queue failure must not
	// undo or fail the intake.
	if s.queue != nil {
		task := &ContactNotifyTask{
			Username:  owner,
			Name:      name,
			Email:     email,
			Message:   body,
			Reference: msg.Reference,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Warn().Err(err).Str("username", owner).Msg("notification enqueue failed")
			LogWarning("contact", "notify_enqueue", "notification enqueue failed: "+err.Error(), ip, nil)
		}
	}

	return &SubmitResult{MessageID: msg.ID, Reference: msg.Reference}, nil
}

// truncateRunes caps a string by rune count, not bytes, so multi-byte
// content is never cut mid-character.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
