package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/codexx/academy/backend/internal/store"
	"github.com/codexx/academy/backend/internal/views"
	"github.com/codexx/academy/backend/pkg/logger"
)

// ErrUsernameRequired is returned by Save when no username is given. The
// legacy document-root merge that path used to perform belonged to the
// account subsystem, which lives elsewhere now.
var ErrUsernameRequired = errors.New("save requires a username")

// PortfolioService is the data-access façade. Reads and writes go to the
// relational store first and fall back to the flat-file store; callers
// never observe which backend answered.
type PortfolioService struct {
	dbStore   *store.DBStore
	fileStore *store.FileStore
	chain     *store.Chain
}

func NewPortfolioService(db *gorm.DB, files *store.FileStore) *PortfolioService {
	dbs := store.NewDBStore(db)
	return &PortfolioService{
		dbStore:   dbs,
		fileStore: files,
		chain:     store.NewChain(dbs, files),
	}
}

// Load returns the portfolio view for a username. A workspace unknown to
// both backends yields the default template, never an error.
func (s *PortfolioService) Load(username string) *views.Portfolio {
	p, err := s.chain.Load(username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error().Err(err).Str("username", username).Msg("portfolio load failed in every backend")
		}
		return views.DefaultPortfolio()
	}
	return p
}

// Global returns the no-username view: all users (sanitized) plus one
// summary per workspace. Database failure falls back to the flat file.
func (s *PortfolioService) Global() *views.Global {
	g, err := s.dbStore.Global()
	if err == nil {
		return g
	}
	logger.Warn().Err(err).Msg("global view unavailable from database, trying flat file")
	LogWarning("portfolio", "global_fallback", "global view served from flat file: "+err.Error(), "", nil)

	g, err = s.fileStore.Global()
	if err != nil {
		logger.Error().Err(err).Msg("global view unavailable from flat file")
		return views.EmptyGlobal()
	}
	return g
}

// Save persists portfolio-level fields for a username. Without a username
// the legacy code merged into the document root; that caller set belongs
// to the excluded account subsystem, so the façade warns and refuses.
func (s *PortfolioService) Save(username string, p *views.Portfolio, autoBackup bool) error {
	if username == "" {
		logger.Warn().Msg("save called without username, flat-file document-root writes are not supported")
		return ErrUsernameRequired
	}

	if err := s.dbStore.Save(username, p, autoBackup); err != nil {
		logger.Error().Err(err).Str("username", username).Msg("database save failed, falling back to flat file")
		LogError("portfolio", "save_fallback", "relational save failed: "+err.Error(), "", map[string]string{"username": username})
		return s.fileStore.Save(username, p, autoBackup)
	}

	logger.Info().Str("username", username).Msg("saved portfolio data")
	return nil
}

// Workspaces exposes the relational store for collaborators that need
// direct record access (contact intake, visitor tracking).
func (s *PortfolioService) Workspaces() *store.DBStore {
	return s.dbStore
}
