package fragment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	domfrag "github.com/kailas-cloud/coach/internal/domain/fragment"
)

// DirSource reads knowledge bases from per-KB directories holding a parquet
// fragment file. Roots are probed with the exact and lower-cased KB name,
// legacy roots with the exact name only. The first match wins.
type DirSource struct {
	roots       []string
	legacyRoots []string
	fileName    string
	logger      *zap.Logger
}

// NewDirSource creates a directory-backed fragment source.
func NewDirSource(roots, legacyRoots []string, fileName string, logger *zap.Logger) *DirSource {
	return &DirSource{
		roots:       roots,
		legacyRoots: legacyRoots,
		fileName:    fileName,
		logger:      logger,
	}
}

// Candidates returns the directories probed for kb, in order.
// Names that could step outside a root have no candidates.
func (s *DirSource) Candidates(kb string) []string {
	if !safeName(kb) {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, root := range s.roots {
		add(filepath.Join(root, kb))
		add(filepath.Join(root, strings.ToLower(kb)))
	}
	for _, root := range s.legacyRoots {
		add(filepath.Join(root, kb))
	}
	return out
}

// Resolve returns the fragment file of kb or domain.ErrNoIndexFound.
func (s *DirSource) Resolve(kb string) (string, error) {
	if !safeName(kb) {
		return "", fmt.Errorf("%w: %q", domain.ErrNoIndexFound, kb)
	}
	for _, dir := range s.Candidates(kb) {
		path := filepath.Join(dir, s.fileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrNoIndexFound, kb)
}

// safeName reports whether kb names a single directory entry.
func safeName(kb string) bool {
	if strings.TrimSpace(kb) == "" || kb == "." || kb == ".." {
		return false
	}
	return !strings.ContainsAny(kb, `/\`+"\x00") && filepath.Base(kb) == kb
}

// Load returns every fragment of kb in file order.
func (s *DirSource) Load(ctx context.Context, kb string) ([]domfrag.Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.Resolve(kb)
	if err != nil {
		return nil, err
	}

	rows, err := ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreLoad, err)
	}

	fragments, dropped := toFragments(kb, rows)
	if dropped > 0 {
		s.logger.Warn("Dropped fragments not mentioning knowledge base",
			zap.String("knowledge_base", kb),
			zap.String("path", path),
			zap.Int("dropped", dropped),
		)
	}
	return fragments, nil
}

// KnowledgeBases lists directory names under the roots that hold a fragment file.
func (s *DirSource) KnowledgeBases(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, root := range append(append([]string{}, s.roots...), s.legacyRoots...) {
		entries, err := os.ReadDir(root)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("list %s: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if _, err := os.Stat(filepath.Join(root, e.Name(), s.fileName)); err == nil {
				seen[e.Name()] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
