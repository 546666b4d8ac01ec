package valkey

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/coach/internal/db"
	dbRedis "github.com/kailas-cloud/coach/internal/db/redis"
)

// Store is a Redis store for Valkey deployments. Valkey-search does not
// support a bare FT.SEARCH "*" on indexes without vector fields, so
// full-index listing and counting fall back to SCAN + HGETALL.
type Store struct {
	*dbRedis.Store
	indexPrefix string
	keyPrefix   string
}

// NewStore connects to Valkey. indexPrefix and keyPrefix map an index
// name (indexPrefix+kb) to the key prefix of its hashes (keyPrefix+kb+":").
func NewStore(cfg dbRedis.Config, indexPrefix, keyPrefix string) (*Store, error) {
	s, err := dbRedis.NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(s, indexPrefix, keyPrefix), nil
}

// Wrap adds the Valkey listing fallback to an existing store.
func Wrap(s *dbRedis.Store, indexPrefix, keyPrefix string) *Store {
	return &Store{Store: s, indexPrefix: indexPrefix, keyPrefix: keyPrefix}
}

// SearchList performs paginated search. query="*" falls back to SCAN.
func (s *Store) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if query != "*" {
		return s.Store.SearchList(ctx, index, query, offset, limit, fields)
	}
	return s.scanList(ctx, index, offset, limit, fields)
}

// SearchCount returns the document count. query="*" falls back to SCAN.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	if query != "*" {
		return s.Store.SearchCount(ctx, index, query)
	}
	keys, err := s.Scan(ctx, s.keyPattern(index))
	if err != nil {
		return 0, fmt.Errorf("scan for count: %w", err)
	}
	return len(keys), nil
}

func (s *Store) scanList(
	ctx context.Context, index string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	keys, err := s.Scan(ctx, s.keyPattern(index))
	if err != nil {
		return nil, fmt.Errorf("scan for list: %w", err)
	}
	sortKeys(keys)

	total := len(keys)
	if offset >= total {
		return &db.SearchResult{Total: total}, nil
	}
	end := min(offset+limit, total)
	page := keys[offset:end]

	hashes, err := s.HGetAllMulti(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	entries := make([]db.SearchEntry, 0, len(page))
	for i, h := range hashes {
		// deleted between SCAN and HGETALL
		if len(h) == 0 {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: page[i], Fields: project(h, fields)})
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// keyPattern converts an index name to the SCAN pattern of its hashes.
// "coach:idx:mml" -> "coach:frag:mml:*"
func (s *Store) keyPattern(index string) string {
	if kb, ok := strings.CutPrefix(index, s.indexPrefix); ok && s.keyPrefix != "" {
		return s.keyPrefix + kb + ":*"
	}
	return index + ":*"
}

// sortKeys orders keys by their numeric suffix, then lexically.
func sortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aok := numericSuffix(keys[i])
		b, bok := numericSuffix(keys[j])
		if aok && bok && a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
}

func numericSuffix(key string) (int, bool) {
	i := strings.LastIndexByte(key, ':')
	n, err := strconv.Atoi(key[i+1:])
	return n, err == nil
}

func project(h map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return h
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := h[f]; ok {
			out[f] = v
		}
	}
	return out
}
