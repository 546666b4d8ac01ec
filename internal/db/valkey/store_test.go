package valkey

import (
	"context"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	dbRedis "github.com/kailas-cloud/coach/internal/db/redis"
)

func newTestStore(c rueidis.Client) *Store {
	return Wrap(dbRedis.NewStoreForTest(c), "coach:idx:", "coach:frag:")
}

func expectScan(c *mock.Client, pattern string, keys ...string) {
	elems := make([]rueidis.RedisMessage, len(keys))
	for i, k := range keys {
		elems[i] = mock.RedisString(k)
	}
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN" && cmd[3] == pattern
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0), mock.RedisArray(elems...))))
}

func TestSearchList_WildcardFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	expectScan(c, "coach:frag:mml:*", "coach:frag:mml:10", "coach:frag:mml:2", "coach:frag:mml:1")
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(
				mock.RedisString("content"), mock.RedisString("first"),
				mock.RedisString("seq"), mock.RedisString("1"),
			)),
			mock.Result(mock.RedisArray(
				mock.RedisString("content"), mock.RedisString("second"),
				mock.RedisString("seq"), mock.RedisString("2"),
			)),
		})

	s := newTestStore(c)
	res, err := s.SearchList(context.Background(), "coach:idx:mml", "*", 0, 2, []string{"content"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 3 {
		t.Errorf("total = %d, want 3", res.Total)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	if res.Entries[0].Key != "coach:frag:mml:1" || res.Entries[1].Key != "coach:frag:mml:2" {
		t.Errorf("keys not in numeric order: %s, %s", res.Entries[0].Key, res.Entries[1].Key)
	}
	if _, ok := res.Entries[0].Fields["seq"]; ok {
		t.Error("unrequested field returned")
	}
	if res.Entries[1].Fields["content"] != "second" {
		t.Errorf("unexpected fields %v", res.Entries[1].Fields)
	}
}

func TestSearchList_OffsetPastEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	expectScan(c, "coach:frag:mml:*", "coach:frag:mml:1")

	s := newTestStore(c)
	res, err := s.SearchList(context.Background(), "coach:idx:mml", "*", 5, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 0 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSearchList_SkipsVanishedKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	expectScan(c, "coach:frag:mml:*", "coach:frag:mml:1", "coach:frag:mml:2")
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray()),
			mock.Result(mock.RedisArray(mock.RedisString("content"), mock.RedisString("kept"))),
		})

	s := newTestStore(c)
	res, err := s.SearchList(context.Background(), "coach:idx:mml", "*", 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 || res.Entries[0].Fields["content"] != "kept" {
		t.Errorf("unexpected entries %+v", res.Entries)
	}
}

func TestSearchList_NonWildcard(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "coach:idx:mml", "@kb:{mml}", "LIMIT", "0", "10")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := newTestStore(c)
	res, err := s.SearchList(context.Background(), "coach:idx:mml", "@kb:{mml}", 0, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("total = %d", res.Total)
	}
}

func TestSearchCount_WildcardFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	expectScan(c, "coach:frag:alarm_handling:*", "coach:frag:alarm_handling:1", "coach:frag:alarm_handling:2")

	s := newTestStore(c)
	n, err := s.SearchCount(context.Background(), "coach:idx:alarm_handling", "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestKeyPattern(t *testing.T) {
	s := Wrap(nil, "coach:idx:", "coach:frag:")
	tests := []struct {
		index string
		want  string
	}{
		{"coach:idx:mml", "coach:frag:mml:*"},
		{"other:index", "other:index:*"},
	}
	for _, tt := range tests {
		if got := s.keyPattern(tt.index); got != tt.want {
			t.Errorf("keyPattern(%q) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
