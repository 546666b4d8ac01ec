package fragment

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/db"
	"github.com/kailas-cloud/coach/internal/domain"
	domfrag "github.com/kailas-cloud/coach/internal/domain/fragment"
)

// Hash field names of an imported fragment.
const (
	fieldContent  = "content"
	fieldSource   = "source"
	fieldPage     = "page"
	fieldMetadata = "metadata"
	fieldKB       = "kb"
	fieldSeq      = "seq"
)

var returnFields = []string{fieldContent, fieldSource, fieldPage, fieldMetadata, fieldSeq}

const scanPageSize = 1000

// searchStore is the consumer interface for index-backed fragments (ISP).
type searchStore interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	ListIndexes(ctx context.Context) ([]string, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexSource reads knowledge bases from Redis/Valkey search indexes.
type IndexSource struct {
	store  searchStore
	prefix string
	logger *zap.Logger
}

// NewIndexSource creates an index-backed fragment source.
func NewIndexSource(s searchStore, indexPrefix string, logger *zap.Logger) *IndexSource {
	return &IndexSource{store: s, prefix: indexPrefix, logger: logger}
}

// Resolve returns the first existing index among the name variants of kb.
func (s *IndexSource) Resolve(ctx context.Context, kb string) (string, error) {
	for _, v := range nameVariants(strings.TrimSpace(kb)) {
		name := s.prefix + v
		if !db.IsValidIdentifier(name) {
			continue
		}
		ok, err := s.store.IndexExists(ctx, name)
		if err != nil {
			return "", fmt.Errorf("%w: probe %s: %w", domain.ErrStoreLoad, name, err)
		}
		if ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrNoIndexFound, kb)
}

// Load scans the whole index of kb and returns fragments ordered by sequence.
func (s *IndexSource) Load(ctx context.Context, kb string) ([]domfrag.Fragment, error) {
	index, err := s.Resolve(ctx, kb)
	if err != nil {
		return nil, err
	}

	total, err := s.store.SearchCount(ctx, index, "*")
	if err != nil {
		return nil, fmt.Errorf("%w: count %s: %w", domain.ErrStoreLoad, index, err)
	}

	type seqRow struct {
		seq int
		row Row
	}
	rows := make([]seqRow, 0, total)
	for offset := 0; offset < total; offset += scanPageSize {
		res, err := s.store.SearchList(ctx, index, "*", offset, scanPageSize, returnFields)
		if err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", domain.ErrStoreLoad, index, err)
		}
		for _, e := range res.Entries {
			seq, _ := strconv.Atoi(e.Fields[fieldSeq])
			rows = append(rows, seqRow{seq: seq, row: Row{
				Content:  e.Fields[fieldContent],
				Source:   e.Fields[fieldSource],
				Page:     e.Fields[fieldPage],
				Metadata: e.Fields[fieldMetadata],
			}})
		}
		if len(res.Entries) == 0 {
			break
		}
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	plain := make([]Row, len(rows))
	for i := range rows {
		plain[i] = rows[i].row
	}

	fragments, dropped := toFragments(kb, plain)
	if dropped > 0 {
		s.logger.Warn("Dropped fragments not mentioning knowledge base",
			zap.String("knowledge_base", kb),
			zap.String("index", index),
			zap.Int("dropped", dropped),
		)
	}
	return fragments, nil
}

// KnowledgeBases lists indexes carrying the fragment prefix.
func (s *IndexSource) KnowledgeBases(ctx context.Context) ([]string, error) {
	names, err := s.store.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	var out []string
	for _, n := range names {
		if kb, ok := strings.CutPrefix(n, s.prefix); ok && kb != "" {
			out = append(out, kb)
		}
	}
	sort.Strings(out)
	return out, nil
}
