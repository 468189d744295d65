// Package search provides full-text search over a session's consolidated
// company directory, backed by a bleve index per session. The directory is
// small and fully rebuilt whenever consolidation runs, so each save replaces
// the session's index wholesale.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"dealscope/internal/models"
	"dealscope/pkg/logger"
)

// Hit is one search result.
type Hit struct {
	Name        string  `json:"name"`
	Type        string  `json:"type,omitempty"`
	Description string  `json:"description,omitempty"`
	Score       float64 `json:"score"`
}

// companyDoc is the indexed shape of one consolidated company.
type companyDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Service owns the per-session indexes. With a base path configured, indexes
// live on disk and survive restarts; otherwise they are in-memory and
// rebuilt on demand.
type Service struct {
	basePath string
	log      *logger.Logger

	mu      sync.RWMutex
	indexes map[uint]bleve.Index
}

// New creates the search service. basePath may be empty for in-memory
// indexes.
func New(basePath string) *Service {
	return &Service{
		basePath: basePath,
		log:      logger.New("search"),
		indexes:  make(map[uint]bleve.Index),
	}
}

// IndexSession replaces the session's index with one built from the given
// directory.
func (s *Service) IndexSession(sessionID uint, companies []models.ConsolidatedCompany) error {
	index, err := s.freshIndex(sessionID)
	if err != nil {
		return err
	}

	batch := index.NewBatch()
	for _, c := range companies {
		doc := companyDoc{
			Name:        c.Name,
			Type:        string(c.Type),
			Description: c.Description,
		}
		if err := batch.Index(c.Name, doc); err != nil {
			return fmt.Errorf("index company %q: %w", c.Name, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("index session %d: %w", sessionID, err)
	}

	s.mu.Lock()
	if old, ok := s.indexes[sessionID]; ok {
		old.Close()
	}
	s.indexes[sessionID] = index
	s.mu.Unlock()
	return nil
}

// Search runs a match query against the session's company directory.
func (s *Service) Search(sessionID uint, query string, limit int) ([]Hit, error) {
	s.mu.RLock()
	index, ok := s.indexes[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %d has no company index", sessionID)
	}

	if limit <= 0 {
		limit = 20
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	req.Fields = []string{"name", "type", "description"}

	result, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search session %d: %w", sessionID, err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hit := Hit{Score: h.Score}
		if v, ok := h.Fields["name"].(string); ok {
			hit.Name = v
		}
		if v, ok := h.Fields["type"].(string); ok {
			hit.Type = v
		}
		if v, ok := h.Fields["description"].(string); ok {
			hit.Description = v
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DropSession closes and removes a session's index.
func (s *Service) DropSession(sessionID uint) {
	s.mu.Lock()
	index, ok := s.indexes[sessionID]
	delete(s.indexes, sessionID)
	s.mu.Unlock()

	if ok {
		index.Close()
	}
	if s.basePath != "" {
		if err := os.RemoveAll(s.indexPath(sessionID)); err != nil {
			s.log.WithField("session", sessionID).WithError(err).Warn("failed to remove index directory")
		}
	}
}

// Close closes every open index.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, index := range s.indexes {
		index.Close()
		delete(s.indexes, id)
	}
}

func (s *Service) indexPath(sessionID uint) string {
	return filepath.Join(s.basePath, strconv.FormatUint(uint64(sessionID), 10)+".bleve")
}

// freshIndex builds an empty index for the session, clearing any previous
// on-disk state first.
func (s *Service) freshIndex(sessionID uint) (bleve.Index, error) {
	mapping := bleve.NewIndexMapping()
	if s.basePath == "" {
		return bleve.NewMemOnly(mapping)
	}

	path := s.indexPath(sessionID)
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clear index directory: %w", err)
	}
	index, err := bleve.New(path, mapping)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return index, nil
}
