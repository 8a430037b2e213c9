package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
	"github.com/Guliveer/twitch-helix-go/internal/cache"
)

type user struct {
	ID    string
	Login string
}

var directory = map[string]string{
	"nightbot":  "19264788",
	"gronkh":    "12875057",
	"xpandorya": "35893764",
}

// fetchUsers answers in reverse order to make sure the resolver reorders.
func fetchUsers(calls *atomic.Int32, sizes *[]int, mu *sync.Mutex) FetchFunc[user] {
	return func(_ context.Context, keys []string) ([]user, error) {
		calls.Add(1)
		if sizes != nil {
			mu.Lock()
			*sizes = append(*sizes, len(keys))
			mu.Unlock()
		}
		var out []user
		for i := len(keys) - 1; i >= 0; i-- {
			if id, ok := directory[keys[i]]; ok {
				out = append(out, user{ID: id, Login: keys[i]})
			}
		}
		return out, nil
	}
}

func newUserResolver(fetch FetchFunc[user]) *Resolver[user] {
	return &Resolver[user]{
		Name:      "users",
		Fetch:     fetch,
		KeyOf:     func(u *user) string { return u.Login },
		Normalize: func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
	}
}

func TestResolveOrdersByInput(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := newUserResolver(fetchUsers(&calls, nil, nil))

	got, err := r.Resolve(context.Background(), []string{"gronkh", "unknown-login", "XpandorYa", "gronkh"})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, "12875057", got[0].ID)
	assert.Nil(t, got[1])
	assert.Equal(t, "35893764", got[2].ID)
	assert.Equal(t, got[0], got[3])
	assert.NotSame(t, got[0], got[3], "repeated keys get separate copies")
	assert.EqualValues(t, 1, calls.Load())
}

func TestResolveEmpty(t *testing.T) {
	t.Parallel()

	r := newUserResolver(func(context.Context, []string) ([]user, error) {
		t.Fatal("no fetch expected")
		return nil, nil
	})
	got, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Resolve(context.Background(), []string{"", "  "})
	require.NoError(t, err)
	assert.Equal(t, []*user{nil, nil}, got)
}

func TestResolveSplitsIntoGroups(t *testing.T) {
	t.Parallel()

	var (
		calls atomic.Int32
		mu    sync.Mutex
		sizes []int
	)
	r := newUserResolver(fetchUsers(&calls, &sizes, &mu))

	keys := make([]string, 0, 250)
	for i := range 249 {
		keys = append(keys, fmt.Sprintf("user%03d", i))
	}
	keys = append(keys, "nightbot")

	got, err := r.Resolve(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, got, 250)
	assert.Equal(t, "19264788", got[249].ID)
	for _, u := range got[:249] {
		assert.Nil(t, u)
	}

	assert.EqualValues(t, 3, calls.Load())
	assert.ElementsMatch(t, []int{100, 100, 50}, sizes)
}

func TestResolveGroupFailureFailsBatch(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream down")
	r := newUserResolver(func(_ context.Context, keys []string) ([]user, error) {
		if keys[0] == "user100" {
			return nil, boom
		}
		return nil, nil
	})
	r.GroupSize = 100

	keys := make([]string, 150)
	for i := range keys {
		keys[i] = fmt.Sprintf("user%03d", i)
	}

	got, err := r.Resolve(context.Background(), keys)
	assert.Nil(t, got)

	var bErr *apierr.BatchError
	require.True(t, errors.As(err, &bErr))
	assert.Equal(t, 1, bErr.Group)
	assert.Len(t, bErr.Keys, 50)
	assert.ErrorIs(t, err, boom)
}

func TestResolveUsesCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := newUserResolver(fetchUsers(&calls, nil, nil))
	r.Cache = cache.New[user](time.Minute)

	first, err := r.Resolve(context.Background(), []string{"nightbot", "gronkh"})
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), []string{"Gronkh", "NightBot"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, first[0], second[1])
	assert.Equal(t, first[1], second[0])
	assert.NotSame(t, first[0], second[1])

	_, err = r.Resolve(context.Background(), []string{"nightbot", "xpandorya"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load(), "only the miss is fetched")
}

func TestResolveCachedRecordSurvivesCallerChanges(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	r := newUserResolver(fetchUsers(&calls, nil, nil))
	r.Cache = cache.New[user](time.Minute)

	got, err := r.Resolve(context.Background(), []string{"nightbot"})
	require.NoError(t, err)
	got[0].ID = "changed-by-caller"

	again, err := r.Resolve(context.Background(), []string{"nightbot"})
	require.NoError(t, err)
	assert.Equal(t, "19264788", again[0].ID)
	assert.EqualValues(t, 1, calls.Load())
}

func TestResolveIgnoresUnrequestedRecords(t *testing.T) {
	t.Parallel()

	r := newUserResolver(func(context.Context, []string) ([]user, error) {
		return []user{{ID: "1", Login: "someone-else"}, {ID: "19264788", Login: "nightbot"}}, nil
	})

	got, err := r.Resolve(context.Background(), []string{"nightbot"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "19264788", got[0].ID)
}

func TestChunk(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Chunk([]int{}, 3))
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}}, Chunk([]int{1, 2, 3, 4, 5}, 3))
	assert.Equal(t, [][]int{{1, 2}}, Chunk([]int{1, 2}, 100))
}
