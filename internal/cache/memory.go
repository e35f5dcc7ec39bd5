package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Memory struct {
	data            sync.Map
	size            atomic.Int64
	maxSize         int
	cleanupInterval time.Duration
	stopCh          chan struct{}
	closeOnce       sync.Once
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory starts an in-process cache. When maxSize is positive, the
// periodic cleanup also evicts the entries closest to expiry until the
// cache fits.
func NewMemory(maxSize int, cleanupInterval time.Duration) *Memory {
	m := &Memory{
		maxSize:         maxSize,
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := m.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	if _, loaded := m.data.Swap(key, entry); !loaded {
		m.size.Add(1)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.remove(key)
	return nil
}

// Len reports the number of stored entries, including expired ones not yet
// cleaned up.
func (m *Memory) Len() int {
	return int(m.size.Load())
}

func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.stopCh) })
	return nil
}

func (m *Memory) remove(key string) {
	if _, loaded := m.data.LoadAndDelete(key); loaded {
		m.size.Add(-1)
	}
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *Memory) cleanup(now time.Time) {
	type live struct {
		key       string
		expiresAt time.Time
	}
	var entries []live

	m.data.Range(func(key, value any) bool {
		k := key.(string)
		entry := value.(*memoryEntry)
		if now.After(entry.expiresAt) {
			m.remove(k)
		} else {
			entries = append(entries, live{k, entry.expiresAt})
		}
		return true
	})

	if m.maxSize <= 0 || len(entries) <= m.maxSize {
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].expiresAt.Before(entries[j].expiresAt)
	})
	for _, e := range entries[:len(entries)-m.maxSize] {
		m.remove(e.key)
	}
}
