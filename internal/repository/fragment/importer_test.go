package fragment

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/db"
)

func TestImporter_Import(t *testing.T) {
	var written []db.HashSetItem
	var deleted []string
	var created *db.IndexDefinition

	st := &mockStore{
		scanFn: func(_ context.Context, pattern string) ([]string, error) {
			if pattern != "coach:frag:mml:*" {
				t.Errorf("unexpected scan pattern %q", pattern)
			}
			return []string{"coach:frag:mml:9"}, nil
		},
		delFn: func(_ context.Context, keys ...string) error {
			deleted = append(deleted, keys...)
			return nil
		},
		hsetMultiFn: func(_ context.Context, items []db.HashSetItem) error {
			written = append(written, items...)
			return nil
		},
		createIndexFn: func(_ context.Context, def *db.IndexDefinition) error {
			created = def
			return db.ErrIndexExists
		},
	}

	im := NewImporter(st, "coach:idx:", "coach:frag:", zap.NewNop())
	res, err := im.Import(context.Background(), "MML", mmlRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Index != "coach:idx:mml" || res.Imported != 4 || res.Removed != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(deleted) != 1 {
		t.Errorf("expected stale key removed, got %v", deleted)
	}
	if len(written) != 4 {
		t.Fatalf("expected 4 hashes, got %d", len(written))
	}
	if written[0].Key != "coach:frag:mml:1" || written[0].Fields["seq"] != "1" || written[0].Fields["kb"] != "mml" {
		t.Errorf("unexpected first item %+v", written[0])
	}
	if created == nil || created.Prefixes[0] != "coach:frag:mml:" {
		t.Errorf("unexpected index definition %+v", created)
	}
}

func TestImporter_WriteError(t *testing.T) {
	st := &mockStore{
		hsetMultiFn: func(context.Context, []db.HashSetItem) error {
			return errors.New("oom")
		},
	}

	im := NewImporter(st, "coach:idx:", "coach:frag:", zap.NewNop())
	if _, err := im.Import(context.Background(), "mml", mmlRows()); err == nil {
		t.Fatal("expected error")
	}
}
