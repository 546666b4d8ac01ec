package grouping

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	domgrouping "github.com/kailas-cloud/coach/internal/domain/grouping"
)

func TestEngine_FallbackOnTimeout(t *testing.T) {
	gen := &mockGenerator{generateFn: func(ctx context.Context, _ string) (domain.Generation, error) {
		<-ctx.Done()
		return domain.Generation{}, ctx.Err()
	}}
	e := New(gen, Config{Timeout: 20 * time.Millisecond}, zap.NewNop())

	res := e.Group(context.Background(), "mml", corpus(8, 2, 2))

	if res.Strategy != domgrouping.StrategyFallback {
		t.Fatalf("expected fallback, got %q", res.Strategy)
	}
	want := []struct {
		name string
		size int
	}{
		{domgrouping.NameDiagrams, 2},
		{domgrouping.NameTables, 2},
		{domgrouping.NameProcedures, 8},
	}
	if len(res.Groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(res.Groups))
	}
	for i, w := range want {
		if res.Groups[i].Name != w.name || res.Groups[i].Size() != w.size {
			t.Errorf("group %d = %q/%d, want %q/%d", i, res.Groups[i].Name, res.Groups[i].Size(), w.name, w.size)
		}
	}
}

func TestEngine_ZeroTimeoutStillBoundsModelCall(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	gen := &mockGenerator{generateFn: func(ctx context.Context, _ string) (domain.Generation, error) {
		deadline, hasDeadline = ctx.Deadline()
		return domain.Generation{}, context.DeadlineExceeded
	}}
	e := New(gen, Config{}, zap.NewNop())
	if e.cfg.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", e.cfg.Timeout, DefaultTimeout)
	}

	start := time.Now()
	res := e.Group(context.Background(), "mml", corpus(2, 0, 0))

	if !hasDeadline {
		t.Fatal("model call ran without a deadline")
	}
	if d := deadline.Sub(start); d <= 0 || d > DefaultTimeout+time.Second {
		t.Errorf("deadline in %v, want about %v", d, DefaultTimeout)
	}
	if res.Strategy != domgrouping.StrategyFallback {
		t.Errorf("expected fallback, got %q", res.Strategy)
	}
}

func TestEngine_FallbackOnError(t *testing.T) {
	e := New(&mockGenerator{}, Config{}, zap.NewNop())
	res := e.Group(context.Background(), "mml", corpus(3, 0, 1))

	if res.Strategy != domgrouping.StrategyFallback || len(res.Groups) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Groups[0].Name != domgrouping.NameTables {
		t.Errorf("expected empty diagrams group omitted, first is %q", res.Groups[0].Name)
	}
}

func TestEngine_FallbackOnUnparsable(t *testing.T) {
	e := New(replying("Sure! Here are some groups: none."), Config{}, zap.NewNop())
	res := e.Group(context.Background(), "mml", corpus(2, 1, 0))

	if res.Strategy != domgrouping.StrategyFallback {
		t.Fatalf("expected fallback, got %q", res.Strategy)
	}
}

func TestEngine_NilGenerator(t *testing.T) {
	e := New(nil, Config{}, zap.NewNop())
	res := e.Group(context.Background(), "mml", corpus(1, 1, 1))

	if res.Strategy != domgrouping.StrategyFallback || len(res.Groups) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEngine_ModelGrouping(t *testing.T) {
	gen := replying(`{"groups":[{"name":"Cell Commands","chunk_indices":[1,5,99]},{"name":"Diagrams","chunk_indices":[9,10]}]}`)
	e := New(gen, Config{}, zap.NewNop())

	res := e.Group(context.Background(), "mml", corpus(8, 2, 2))

	if res.Strategy != domgrouping.StrategyModel {
		t.Fatalf("expected model strategy, got %q", res.Strategy)
	}
	if len(res.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(res.Groups))
	}
	if got := ids(res.Groups[0].Members); !slices.Equal(got, []int{1, 5}) {
		t.Errorf("group 0 members = %v, want [1 5]", got)
	}
	if res.Uncovered != 8 {
		t.Errorf("Uncovered = %d, want 8", res.Uncovered)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"ALL 12 mml chunks", "CHUNK 1 [TEXT] commands.pdf:", "CHUNK 9 [IMAGE] arch.pdf:", "(1-12)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEngine_EmptyCorpus(t *testing.T) {
	gen := replying(`{"groups":[]}`)
	e := New(gen, Config{}, zap.NewNop())

	res := e.Group(context.Background(), "mml", nil)
	if len(res.Groups) != 0 || len(gen.prompts) != 0 {
		t.Fatalf("expected no groups and no model call, got %+v", res)
	}
}

func TestFallbackGroups_PartitionsByType(t *testing.T) {
	fr := corpus(5, 3, 4)
	groups := FallbackGroups(fr)

	total := 0
	for _, g := range groups {
		total += g.Size()
	}
	if total != len(fr) {
		t.Errorf("fallback covers %d of %d fragments", total, len(fr))
	}
	if got := ids(groups[0].Members); !slices.Equal(got, []int{6, 7, 8}) {
		t.Errorf("diagram members = %v", got)
	}
}
