// Package views defines the serializable shapes the presentation layer
// consumes. Both persistence backends (relational and flat-file) produce
// exactly these types, so callers never see which backend answered.
package views

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

const (
	// DateTimeLayout is the fixed pattern for timestamp fields.
	DateTimeLayout = "2006-01-02 15:04:05"
	// DateLayout is the fixed pattern for date-only fields.
	DateLayout = "2006-01-02"

	ProjectTypePortfolio = "portfolio"
	ProjectTypeRequest   = "request"

	DefaultTheme = "luxury-gold"
)

// ID tolerates both numeric and string ids: legacy flat-file documents
// carry string ids while the relational store issues integers. It
// marshals back to a bare number when the value is numeric, so relational
// output keeps its original shape.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// IDFromUint builds an ID from a relational primary key.
func IDFromUint(v uint) ID {
	return ID(strconv.FormatUint(uint64(v), 10))
}

// Portfolio is the full per-workspace view.
type Portfolio struct {
	Username      string                 `json:"username,omitempty"`
	Name          string                 `json:"name"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	About         string                 `json:"about,omitempty"`
	Photo         string                 `json:"photo,omitempty"`
	IsVerified    bool                   `json:"is_verified,omitempty"`
	Skills        []Skill                `json:"skills"`
	Projects      []Project              `json:"projects"`
	Clients       []Client               `json:"clients"`
	Messages      []Message              `json:"messages"`
	Services      []Service              `json:"services"`
	Contact       map[string]interface{} `json:"contact"`
	Social        map[string]interface{} `json:"social"`
	Settings      map[string]interface{} `json:"settings"`
	Visitors      Visitors               `json:"visitors"`
	Notifications Notifications          `json:"notifications"`
}

// Theme returns the configured theme, falling back to the default.
func (p *Portfolio) Theme() string {
	if p.Settings != nil {
		if t, ok := p.Settings["theme"].(string); ok && t != "" {
			return t
		}
	}
	return DefaultTheme
}

// ActiveServices filters the services offered right now.
func (p *Portfolio) ActiveServices() []Service {
	out := make([]Service, 0, len(p.Services))
	for _, s := range p.Services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}

// FindProject matches a project by id; legacy flat-file documents may
// store string ids, so comparison happens on the decimal string form.
func (p *Portfolio) FindProject(id string) *Project {
	for i := range p.Projects {
		if p.Projects[i].ID.String() == id {
			return &p.Projects[i]
		}
	}
	return nil
}

// DefaultPortfolio is the hard-coded template returned when a username is
// unknown to every backend.
func DefaultPortfolio() *Portfolio {
	return &Portfolio{
		Name:        "",
		Title:       "Web Developer & Designer",
		Description: "Welcome to my professional portfolio.",
		Skills:      []Skill{},
		Projects:    []Project{},
		Clients:     []Client{},
		Messages:    []Message{},
		Services:    []Service{},
		Contact:     map[string]interface{}{},
		Social:      map[string]interface{}{},
		Settings:    map[string]interface{}{"theme": DefaultTheme},
		Visitors: Visitors{
			Total:     0,
			Today:     []VisitorEntry{},
			UniqueIPs: []string{},
		},
	}
}

type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Project is the view of a single project. The four request_* fields are
// present (possibly null) for request-type projects and entirely absent
// for portfolio-type ones; MarshalJSON enforces that.
type Project struct {
	ID               ID       `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Content          string   `json:"content"`
	Image            string   `json:"image"`
	DemoURL          string   `json:"demo_url"`
	GithubURL        string   `json:"github_url"`
	Technologies     []string `json:"technologies"`
	Gallery          []string `json:"gallery"`
	SkillRelated     []string `json:"skill_related"`
	ProjectType      string   `json:"project_type"`
	Badge            string   `json:"badge"`
	CreatedAt        *string  `json:"created_at"`

	RequestBudgetMin *float64 `json:"request_budget_min,omitempty"`
	RequestBudgetMax *float64 `json:"request_budget_max,omitempty"`
	RequestDeadline  *string  `json:"request_deadline,omitempty"`
	RequestStatus    *string  `json:"request_status,omitempty"`
}

// projectCommon mirrors Project without the request-only fields.
type projectCommon struct {
	ID               ID       `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Content          string   `json:"content"`
	Image            string   `json:"image"`
	DemoURL          string   `json:"demo_url"`
	GithubURL        string   `json:"github_url"`
	Technologies     []string `json:"technologies"`
	Gallery          []string `json:"gallery"`
	SkillRelated     []string `json:"skill_related"`
	ProjectType      string   `json:"project_type"`
	Badge            string   `json:"badge"`
	CreatedAt        *string  `json:"created_at"`
}

func (p Project) common() projectCommon {
	return projectCommon{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Content:          p.Content,
		Image:            p.Image,
		DemoURL:          p.DemoURL,
		GithubURL:        p.GithubURL,
		Technologies:     p.Technologies,
		Gallery:          p.Gallery,
		SkillRelated:     p.SkillRelated,
		ProjectType:      p.ProjectType,
		Badge:            p.Badge,
		CreatedAt:        p.CreatedAt,
	}
}

func (p Project) MarshalJSON() ([]byte, error) {
	if p.ProjectType != ProjectTypeRequest {
		return json.Marshal(p.common())
	}
	return json.Marshal(struct {
		projectCommon
		RequestBudgetMin *float64 `json:"request_budget_min"`
		RequestBudgetMax *float64 `json:"request_budget_max"`
		RequestDeadline  *string  `json:"request_deadline"`
		RequestStatus    *string  `json:"request_status"`
	}{
		projectCommon:    p.common(),
		RequestBudgetMin: p.RequestBudgetMin,
		RequestBudgetMax: p.RequestBudgetMax,
		RequestDeadline:  p.RequestDeadline,
		RequestStatus:    p.RequestStatus,
	})
}

type Client struct {
	ID                 ID      `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Company            string  `json:"company"`
	ProjectTitle       string  `json:"project_title"`
	ProjectDescription string  `json:"project_description"`
	Status             string  `json:"status"`
	Price              string  `json:"price"`
	Deadline           *string `json:"deadline"`
	StartDate          *string `json:"start_date"`
	Notes              string  `json:"notes"`
	CreatedAt          *string `json:"created_at"`
	StatusUpdatedAt    *string `json:"status_updated_at"`
}

type Message struct {
	ID         ID      `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Message    string  `json:"message"`
	Read       bool    `json:"read"`
	Category   string  `json:"category"`
	SenderID   *uint   `json:"sender_id"`
	ReceiverID *uint   `json:"receiver_id"`
	Date       *string `json:"date"`
}

type Service struct {
	ID               ID       `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Category         string   `json:"category"`
	PricingType      string   `json:"pricing_type"`
	PriceMin         *float64 `json:"price_min"`
	PriceMax         *float64 `json:"price_max"`
	Currency         string   `json:"currency"`
	Deliverables     []string `json:"deliverables"`
	Duration         string   `json:"duration"`
	SkillsRequired   []string `json:"skills_required"`
	Image            string   `json:"image"`
	Gallery          []string `json:"gallery"`
	IsActive         bool     `json:"is_active"`
	IsFeatured       bool     `json:"is_featured"`
	CreatedAt        *string  `json:"created_at"`
	UpdatedAt        *string  `json:"updated_at"`
}

type VisitorEntry struct {
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
	Date      string `json:"date"`
}

type Visitors struct {
	Total     int            `json:"total"`
	Today     []VisitorEntry `json:"today"`
	UniqueIPs []string       `json:"unique_ips"`
}

// TelegramSettings is exposed only when a bot token is configured.
type TelegramSettings struct {
	BotToken     string  `json:"bot_token"`
	ChatID       string  `json:"chat_id"`
	ConfiguredAt *string `json:"configured_at"`
}

// Notifications marshals to an empty object when nothing is configured.
type Notifications struct {
	Telegram *TelegramSettings `json:"telegram,omitempty"`
}

// UserSummary is the sanitized account view exposed in the global listing.
// It deliberately carries no credential hash.
type UserSummary struct {
	ID                 uint    `json:"id"`
	Username           string  `json:"username"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	IsDemo             bool    `json:"is_demo"`
	IsVerified         bool    `json:"is_verified"`
	MustChangePassword bool    `json:"must_change_password"`
	CreatedAt          *string `json:"created_at"`
}

// WorkspaceSummary is the landing-page card for one workspace.
type WorkspaceSummary struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	About       string `json:"about"`
	Photo       string `json:"photo"`
	Username    string `json:"username"`
	IsVerified  bool   `json:"is_verified"`
}

// Global is the no-username view: all users plus per-workspace summaries.
type Global struct {
	Users      []UserSummary               `json:"users"`
	Portfolios map[string]WorkspaceSummary `json:"portfolios"`
}

// EmptyGlobal returns a usable zero global view.
func EmptyGlobal() *Global {
	return &Global{
		Users:      []UserSummary{},
		Portfolios: map[string]WorkspaceSummary{},
	}
}

// FindUser locates a user summary by username.
func (g *Global) FindUser(username string) *UserSummary {
	for i := range g.Users {
		if g.Users[i].Username == username {
			return &g.Users[i]
		}
	}
	return nil
}

// --- date formatting helpers ---

// FormatDateTime renders a timestamp with the fixed pattern; nil in, nil
// out. Absent dates must serialize as null, never as an empty string.
func FormatDateTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(DateTimeLayout)
	return &s
}

// FormatDate renders a date-only field; nil in, nil out.
func FormatDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// FormatISO renders an RFC 3339 timestamp (service records use ISO form).
func FormatISO(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// DeriveBadge backfills the badge for legacy records that predate the
// project_type split.
func DeriveBadge(projectType string) string {
	if projectType == ProjectTypeRequest {
		return "Client Request"
	}
	return "Showcase"
}
