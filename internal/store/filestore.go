package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/codexx/academy/backend/internal/views"
	"github.com/codexx/academy/backend/pkg/logger"
)

// FileStore is the legacy flat-file backend: one JSON document holding
// every portfolio keyed by username. It guards the document with its own
// mutex so concurrent writers within this process serialize; concurrent
// processes remain last-writer-wins, which is an accepted limitation of
// the legacy format.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// document is the on-disk shape of the flat file.
type document struct {
	Users      []views.UserSummary         `json:"users,omitempty"`
	Portfolios map[string]*views.Portfolio `json:"portfolios"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Name() string { return "flat-file" }

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// BackupPath is where the pre-overwrite snapshot lands.
func (s *FileStore) BackupPath() string { return s.path + ".bak" }

func (s *FileStore) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Portfolios: map[string]*views.Portfolio{}}, nil
		}
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt data file %s: %w", s.path, err)
	}
	if doc.Portfolios == nil {
		doc.Portfolios = map[string]*views.Portfolio{}
	}
	return &doc, nil
}

// Load returns the stored portfolio for a username, normalizing legacy
// project records that predate the project_type field.
func (s *FileStore) Load(username string) (*views.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	p, ok := doc.Portfolios[username]
	if !ok || p == nil {
		return nil, ErrNotFound
	}

	NormalizeLegacyProjects(p)
	return p, nil
}

// NormalizeLegacyProjects backfills project_type and badge on records
// written before those fields existed.
func NormalizeLegacyProjects(p *views.Portfolio) {
	for i := range p.Projects {
		if p.Projects[i].ProjectType == "" {
			p.Projects[i].ProjectType = views.ProjectTypePortfolio
		}
		if p.Projects[i].Badge == "" {
			p.Projects[i].Badge = views.DeriveBadge(p.Projects[i].ProjectType)
		}
	}
}

// Save writes the portfolio into the document, snapshotting the previous
// document first when backup is requested. A failed snapshot is logged and
// ignored; it must not block the write.
func (s *FileStore) Save(username string, p *views.Portfolio, backup bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backup {
		if err := s.snapshot(); err != nil {
			logger.Warn().Err(err).Str("file", s.path).Msg("auto-backup failed")
		}
	}

	doc, err := s.read()
	if err != nil {
		// Unreadable document: start fresh rather than refusing the write.
		logger.Warn().Err(err).Str("file", s.path).Msg("rewriting unreadable data file")
		doc = &document{Portfolios: map[string]*views.Portfolio{}}
	}

	doc.Portfolios[username] = p
	return s.write(doc)
}

func (s *FileStore) snapshot() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(s.BackupPath(), data, 0644)
}

func (s *FileStore) write(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// Global derives the no-username view from the document: stored users plus
// a summary per portfolio.
func (s *FileStore) Global() (*views.Global, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}

	g := views.EmptyGlobal()
	g.Users = append(g.Users, doc.Users...)

	verified := make(map[string]bool, len(doc.Users))
	for _, u := range doc.Users {
		verified[u.Username] = u.IsVerified
	}

	for username, p := range doc.Portfolios {
		if p == nil {
			continue
		}
		g.Portfolios[username] = views.WorkspaceSummary{
			Name:        p.Name,
			Title:       p.Title,
			Description: p.Description,
			About:       p.About,
			Photo:       p.Photo,
			Username:    username,
			IsVerified:  verified[username],
		}
	}

	return g, nil
}
