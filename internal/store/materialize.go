package store

import (
	"time"

	"github.com/codexx/academy/backend/internal/models"
	"github.com/codexx/academy/backend/internal/views"
)

// Materialize converts a workspace record and its related collections into
// the view shape the flat-file path also produces. Pure function: the
// caller supplies all rows and the reference time for "today".
func Materialize(ws *models.Workspace, visitorLogs []models.VisitorLog, notif *models.NotificationSetting, now time.Time) *views.Portfolio {
	if ws == nil {
		return views.DefaultPortfolio()
	}

	skills := make([]views.Skill, 0, len(ws.Skills))
	for _, s := range ws.Skills {
		skills = append(skills, views.Skill{Name: s.Name, Level: s.Level})
	}

	projects := make([]views.Project, 0, len(ws.Projects))
	for i := range ws.Projects {
		projects = append(projects, MaterializeProject(&ws.Projects[i]))
	}

	clients := make([]views.Client, 0, len(ws.Clients))
	for i := range ws.Clients {
		clients = append(clients, materializeClient(&ws.Clients[i]))
	}

	messages := make([]views.Message, 0, len(ws.Messages))
	for i := range ws.Messages {
		messages = append(messages, materializeMessage(&ws.Messages[i]))
	}

	services := make([]views.Service, 0, len(ws.Services))
	for i := range ws.Services {
		services = append(services, materializeService(&ws.Services[i]))
	}

	return &views.Portfolio{
		Username:      ws.Slug,
		Name:          ws.Name,
		Title:         ws.Title,
		Description:   ws.Description,
		About:         ws.About,
		Photo:         ws.Photo,
		Skills:        skills,
		Projects:      projects,
		Clients:       clients,
		Messages:      messages,
		Services:      services,
		Contact:       models.DecodeMap(ws.Contact),
		Social:        models.DecodeMap(ws.Social),
		Settings:      ws.SettingsMap(),
		Visitors:      aggregateVisitors(visitorLogs, now),
		Notifications: materializeNotifications(notif),
	}
}

// MaterializeProject maps one project row. Request-type projects carry the
// budget/deadline/status fields; portfolio-type projects omit them.
func MaterializeProject(p *models.Project) views.Project {
	projectType := p.ProjectType
	if projectType == "" {
		projectType = views.ProjectTypePortfolio
	}
	badge := p.Badge
	if badge == "" {
		badge = views.DeriveBadge(projectType)
	}

	created := p.CreatedAt
	v := views.Project{
		ID:               views.IDFromUint(p.ID),
		Title:            p.Title,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		Image:            p.Image,
		DemoURL:          p.DemoURL,
		GithubURL:        p.GithubURL,
		Technologies:     models.DecodeList(p.Technologies),
		Gallery:          models.DecodeList(p.Gallery),
		SkillRelated:     models.DecodeList(p.SkillRelated),
		ProjectType:      projectType,
		Badge:            badge,
		CreatedAt:        views.FormatDateTime(&created),
	}

	if projectType == views.ProjectTypeRequest {
		status := p.RequestStatus
		if status == "" {
			status = "open"
		}
		v.RequestBudgetMin = p.RequestBudgetMin
		v.RequestBudgetMax = p.RequestBudgetMax
		v.RequestDeadline = views.FormatDate(p.RequestDeadline)
		v.RequestStatus = &status
	}

	return v
}

func materializeClient(c *models.Client) views.Client {
	status := c.Status
	if status == "" {
		status = "lead"
	}
	created := c.CreatedAt
	return views.Client{
		ID:                 views.IDFromUint(c.ID),
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Company:            c.Company,
		ProjectTitle:       c.ProjectTitle,
		ProjectDescription: c.ProjectDescription,
		Status:             status,
		Price:              c.Price,
		Deadline:           views.FormatDate(c.Deadline),
		StartDate:          views.FormatDate(c.StartDate),
		Notes:              c.Notes,
		CreatedAt:          views.FormatDateTime(&created),
		StatusUpdatedAt:    views.FormatDateTime(c.StatusUpdatedAt),
	}
}

func materializeMessage(m *models.Message) views.Message {
	category := m.Category
	if category == "" {
		category = "portfolio"
	}
	created := m.CreatedAt
	return views.Message{
		ID:         views.IDFromUint(m.ID),
		Name:       m.Name,
		Email:      m.Email,
		Message:    m.Message,
		Read:       m.IsRead,
		Category:   category,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Date:       views.FormatDateTime(&created),
	}
}

func materializeService(s *models.Service) views.Service {
	pricingType := s.PricingType
	if pricingType == "" {
		pricingType = "custom"
	}
	currency := s.Currency
	if currency == "" {
		currency = "USD"
	}
	created := s.CreatedAt
	updated := s.UpdatedAt
	return views.Service{
		ID:               views.IDFromUint(s.ID),
		Title:            s.Title,
		Description:      s.Description,
		ShortDescription: s.ShortDescription,
		Category:         s.Category,
		PricingType:      pricingType,
		PriceMin:         s.PriceMin,
		PriceMax:         s.PriceMax,
		Currency:         currency,
		Deliverables:     models.DecodeList(s.Deliverables),
		Duration:         s.Duration,
		SkillsRequired:   models.DecodeList(s.SkillsRequired),
		Image:            s.Image,
		Gallery:          models.DecodeList(s.Gallery),
		IsActive:         s.IsActive,
		IsFeatured:       s.IsFeatured,
		CreatedAt:        views.FormatISO(&created),
		UpdatedAt:        views.FormatISO(&updated),
	}
}

// aggregateVisitors partitions the full log in one pass: today's entries
// by UTC date, total count, and the de-duplicated IP set.
func aggregateVisitors(logs []models.VisitorLog, now time.Time) views.Visitors {
	today := now.UTC().Format(views.DateLayout)
	entries := []views.VisitorEntry{}
	seen := make(map[string]struct{}, len(logs))
	unique := []string{}

	for _, log := range logs {
		created := log.CreatedAt.UTC()
		if created.Format(views.DateLayout) == today {
			entries = append(entries, views.VisitorEntry{
				IP:        log.IPAddress,
				Timestamp: created.Format(views.DateTimeLayout),
				Date:      created.Format(views.DateLayout),
			})
		}
		if _, ok := seen[log.IPAddress]; !ok {
			seen[log.IPAddress] = struct{}{}
			unique = append(unique, log.IPAddress)
		}
	}

	return views.Visitors{
		Total:     len(logs),
		Today:     entries,
		UniqueIPs: unique,
	}
}

// materializeNotifications includes the telegram block only when a bot
// token is actually configured; otherwise the key stays an empty mapping.
func materializeNotifications(n *models.NotificationSetting) views.Notifications {
	if n == nil || n.TelegramBotToken == "" {
		return views.Notifications{}
	}
	return views.Notifications{
		Telegram: &views.TelegramSettings{
			BotToken:     n.TelegramBotToken,
			ChatID:       n.TelegramChatID,
			ConfiguredAt: views.FormatDateTime(n.TelegramConfiguredAt),
		},
	}
}
