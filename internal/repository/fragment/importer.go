package fragment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/db"
)

const importBatchSize = 500

// importStore is the consumer interface for the importer (ISP).
type importStore interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Importer copies parquet fragment rows into hashes covered by a search index.
type Importer struct {
	store       importStore
	indexPrefix string
	keyPrefix   string
	logger      *zap.Logger
}

// NewImporter creates an importer.
func NewImporter(s importStore, indexPrefix, keyPrefix string, logger *zap.Logger) *Importer {
	return &Importer{store: s, indexPrefix: indexPrefix, keyPrefix: keyPrefix, logger: logger}
}

// ImportResult summarizes one import.
type ImportResult struct {
	Index    string
	Imported int
	Removed  int
}

// Import replaces the fragments of kb with rows and ensures the index exists.
// Row order becomes the seq field, which IndexSource sorts on.
func (im *Importer) Import(ctx context.Context, kb string, rows []Row) (ImportResult, error) {
	prefix := KeyPrefix(im.keyPrefix, kb)
	index := IndexName(im.indexPrefix, kb)

	def, err := db.NewIndex(index).
		Prefix(prefix).
		Text(fieldContent).
		Tag(fieldSource).
		Tag(fieldKB).
		NumericSortable(fieldSeq).
		Build()
	if err != nil {
		return ImportResult{}, fmt.Errorf("build index %s: %w", index, err)
	}

	stale, err := im.store.Scan(ctx, prefix+"*")
	if err != nil {
		return ImportResult{}, fmt.Errorf("scan %s: %w", prefix, err)
	}
	if err := im.store.Del(ctx, stale...); err != nil {
		return ImportResult{}, fmt.Errorf("remove stale fragments: %w", err)
	}

	items := make([]db.HashSetItem, 0, importBatchSize)
	flush := func() error {
		if err := im.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("write fragments: %w", err)
		}
		items = items[:0]
		return nil
	}
	for i, row := range rows {
		seq := strconv.Itoa(i + 1)
		items = append(items, db.HashSetItem{
			Key: prefix + seq,
			Fields: map[string]string{
				fieldContent:  row.Content,
				fieldSource:   row.Source,
				fieldPage:     row.Page,
				fieldMetadata: row.Metadata,
				fieldKB:       Slug(kb),
				fieldSeq:      seq,
			},
		})
		if len(items) == importBatchSize {
			if err := flush(); err != nil {
				return ImportResult{}, err
			}
		}
	}
	if err := flush(); err != nil {
		return ImportResult{}, err
	}

	if err := im.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return ImportResult{}, fmt.Errorf("create index %s: %w", index, err)
	}

	im.logger.Info("Imported fragments",
		zap.String("knowledge_base", kb),
		zap.String("index", index),
		zap.Int("imported", len(rows)),
		zap.Int("removed", len(stale)),
	)
	return ImportResult{Index: index, Imported: len(rows), Removed: len(stale)}, nil
}
