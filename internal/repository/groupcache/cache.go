// Package groupcache persists grouping snapshots per knowledge base.
package groupcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/db"
	"github.com/kailas-cloud/coach/internal/domain"
	"github.com/kailas-cloud/coach/internal/domain/fragment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
)

var cacheKeyPrefix = domain.KeyPrefix + "groups:"

// store is the consumer interface for the grouping cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache stores one grouping entry per knowledge base in a key-value store.
type Cache struct {
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a grouping cache.
// cacheTotal is a counter vec with label "result", may be nil. Only misses
// are counted here: whether a found entry is a hit or stale depends on the
// live fragment count, which the caller owns.
func New(s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{store: s, cacheTotal: cacheTotal, logger: logger}
}

// Key returns the cache key of kb.
func Key(kb string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(kb))
}

// Get returns the cached entry of kb. Read and decode failures are reported as a miss.
// A found entry is not counted.
func (c *Cache) Get(ctx context.Context, kb string) (grouping.Entry, bool) {
	key := Key(kb)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read grouping cache", zap.String("key", key), zap.Error(err))
		}
		c.inc("miss")
		return grouping.Entry{}, false
	}

	var dto entryDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		c.logger.Warn("Failed to decode grouping cache", zap.String("key", key), zap.Error(err))
		c.inc("miss")
		return grouping.Entry{}, false
	}

	return dto.toEntry(), true
}

// Put stores e under its knowledge base, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, e grouping.Entry) error {
	key := Key(e.KnowledgeBase)

	data, err := json.Marshal(fromEntry(e))
	if err != nil {
		return fmt.Errorf("encode grouping entry %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store grouping entry %s: %w", key, err)
	}
	return nil
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

type entryDTO struct {
	KnowledgeBase  string     `json:"knowledge_base"`
	TotalFragments int        `json:"total_chunks"`
	Strategy       string     `json:"strategy"`
	CreatedAt      time.Time  `json:"timestamp"`
	Groups         []groupDTO `json:"groups"`
}

type groupDTO struct {
	Name    string        `json:"name"`
	Members []fragmentDTO `json:"chunks"`
}

type fragmentDTO struct {
	ID       int               `json:"id"`
	Body     string            `json:"content"`
	Source   string            `json:"source"`
	Page     string            `json:"page"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func fromEntry(e grouping.Entry) entryDTO {
	dto := entryDTO{
		KnowledgeBase:  e.KnowledgeBase,
		TotalFragments: e.TotalFragments,
		Strategy:       string(e.Strategy),
		CreatedAt:      e.CreatedAt,
		Groups:         make([]groupDTO, 0, len(e.Groups)),
	}
	for _, g := range e.Groups {
		gd := groupDTO{Name: g.Name, Members: make([]fragmentDTO, 0, len(g.Members))}
		for _, f := range g.Members {
			gd.Members = append(gd.Members, fragmentDTO{
				ID:       f.ID,
				Body:     f.Body,
				Source:   f.Source,
				Page:     f.Page,
				Metadata: f.Metadata,
			})
		}
		dto.Groups = append(dto.Groups, gd)
	}
	return dto
}

func (d entryDTO) toEntry() grouping.Entry {
	e := grouping.Entry{
		KnowledgeBase:  d.KnowledgeBase,
		TotalFragments: d.TotalFragments,
		Strategy:       grouping.Strategy(d.Strategy),
		CreatedAt:      d.CreatedAt,
		Groups:         make([]grouping.Group, 0, len(d.Groups)),
	}
	for _, gd := range d.Groups {
		g := grouping.Group{Name: gd.Name, Members: make([]fragment.Fragment, 0, len(gd.Members))}
		for _, fd := range gd.Members {
			g.Members = append(g.Members, fragment.Fragment{
				ID:            fd.ID,
				Body:          fd.Body,
				Source:        fd.Source,
				Page:          fd.Page,
				KnowledgeBase: d.KnowledgeBase,
				Metadata:      fd.Metadata,
			})
		}
		e.Groups = append(e.Groups, g)
	}
	return e
}
