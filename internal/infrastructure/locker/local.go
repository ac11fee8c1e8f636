package locker

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"

	"github.com/LavaJover/shvark-settlement-service/internal/domain"
	"golang.org/x/sync/semaphore"
)

const shardCount = 32

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// LocalLocker serialises work on keys inside a single process.
type LocalLocker struct {
	shards [shardCount]shard
}

func NewLocalLocker() *LocalLocker {
	l := &LocalLocker{}
	for i := range l.shards {
		l.shards[i].entries = make(map[string]*entry)
	}
	return l
}

func (l *LocalLocker) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &l.shards[h.Sum32()%shardCount]
}

func (l *LocalLocker) ref(key string) *entry {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		s.entries[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(key string) {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		delete(s.entries, key)
	}
}

// Acquire takes keys in sorted order. It gives up with ErrBusy when ctx
// expires before every key is held.
func (l *LocalLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	type held struct {
		key string
		e   *entry
	}
	acquired := make([]held, 0, len(sorted))
	release := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].e.sem.Release(1)
			l.unref(acquired[i].key)
		}
	}

	for _, key := range sorted {
		e := l.ref(key)
		if err := e.sem.Acquire(ctx, 1); err != nil {
			l.unref(key)
			release()
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", domain.ErrBusy, key)
			}
			return nil, err
		}
		acquired = append(acquired, held{key: key, e: e})
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
