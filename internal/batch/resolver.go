// Package batch reconciles one-to-many Helix lookups and paginated
// relationship scans with the ordering and size limits callers expect.
package batch

import (
	"context"

	"github.com/Guliveer/twitch-helix-go/internal/apierr"
	"github.com/Guliveer/twitch-helix-go/internal/cache"
	"github.com/Guliveer/twitch-helix-go/internal/constants"
	"github.com/Guliveer/twitch-helix-go/internal/events"
	"github.com/Guliveer/twitch-helix-go/internal/metrics"
	"github.com/Guliveer/twitch-helix-go/internal/workerpool"
)

// FetchFunc retrieves the records for one group of normalized keys. The
// records may come back in any order and unknown keys are simply absent.
type FetchFunc[R any] func(ctx context.Context, keys []string) ([]R, error)

// Resolver turns a list of keys into records, one per key and in the order
// of the keys, while issuing at most one upstream call per GroupSize keys.
type Resolver[R any] struct {
	// Name identifies the resolver in events, e.g. "users by login".
	Name string

	Fetch FetchFunc[R]
	// KeyOf returns the normalized key a record answers.
	KeyOf func(*R) string
	// Normalize maps an input key to its lookup form. Nil keeps keys as is.
	Normalize func(string) string

	GroupSize int
	Workers   int

	// Cache holds records by value; every result is a fresh copy.
	Cache   *cache.TTL[R]
	Events  *events.Emitter
	Metrics *metrics.Collectors
}

// Resolve returns len(keys) results where results[i] answers keys[i], or
// nil when no record exists for it. Every slot holds its own copy, so
// callers may modify results freely. If any upstream group fails the whole call fails with *apierr.BatchError and no
// partial results.
func (r *Resolver[R]) Resolve(ctx context.Context, keys []string) ([]*R, error) {
	results := make([]*R, len(keys))
	if len(keys) == 0 {
		return results, nil
	}
	r.Metrics.ObserveBatch(len(keys))

	normalized := make([]string, len(keys))
	wanted := make(map[string]bool, len(keys))
	found := make(map[string]R, len(keys))
	var misses []string

	for i, key := range keys {
		nk := r.normalize(key)
		normalized[i] = nk
		if nk == "" || wanted[nk] {
			continue
		}
		wanted[nk] = true
		if rec, ok := r.Cache.Get(nk); ok {
			found[nk] = rec
			continue
		}
		misses = append(misses, nk)
	}

	groups := Chunk(misses, r.groupSize())
	fetched, err := workerpool.Map(ctx, groups, r.workers(),
		func(ctx context.Context, i int, group []string) ([]R, error) {
			recs, err := r.Fetch(ctx, group)
			if err != nil {
				return nil, &apierr.BatchError{Group: i, Keys: group, Err: err}
			}
			return recs, nil
		})
	if err != nil {
		if r.Events != nil {
			r.Events.Error("Batch lookup failed",
				"resolver", r.Name,
				"keys", len(keys),
				"groups", len(groups),
				"error", err)
		}
		return nil, err
	}

	for _, recs := range fetched {
		for j := range recs {
			k := r.KeyOf(&recs[j])
			if !wanted[k] {
				continue
			}
			if _, dup := found[k]; dup {
				continue
			}
			found[k] = recs[j]
			r.Cache.Set(k, recs[j])
		}
	}

	for i, nk := range normalized {
		if rec, ok := found[nk]; ok {
			results[i] = &rec
		}
	}
	return results, nil
}

func (r *Resolver[R]) normalize(key string) string {
	if r.Normalize == nil {
		return key
	}
	return r.Normalize(key)
}

func (r *Resolver[R]) groupSize() int {
	if r.GroupSize <= 0 {
		return constants.MaxIDsPerRequest
	}
	return r.GroupSize
}

func (r *Resolver[R]) workers() int {
	if r.Workers <= 0 {
		return constants.DefaultBatchWorkers
	}
	return r.Workers
}

// Chunk splits items into consecutive groups of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	groups := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		groups = append(groups, items[start:end])
	}
	return groups
}
