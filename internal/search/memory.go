package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Memory is an in-process Index with term-count ranking
type Memory struct {
	mu      sync.RWMutex
	docs    map[string]map[uint64]map[string]any
	failure error
}

var _ Index = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[uint64]map[string]any)}
}

// SetFailure makes every operation return err until cleared with nil
func (m *Memory) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *Memory) Upsert(_ context.Context, index string, id uint64, doc map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	if m.docs[index] == nil {
		m.docs[index] = make(map[uint64]map[string]any)
	}
	stored := make(map[string]any, len(doc))
	for k, v := range doc {
		stored[k] = v
	}
	m.docs[index][id] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, index string, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failure != nil {
		return m.failure
	}
	delete(m.docs[index], id)
	return nil
}

func (m *Memory) Query(_ context.Context, index, text string, page, perPage int) ([]uint64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.failure != nil {
		return nil, 0, m.failure
	}

	terms := tokenize(text)
	if len(terms) == 0 {
		return nil, 0, nil
	}

	type hit struct {
		id    uint64
		score int
	}
	var hits []hit
	for id, doc := range m.docs[index] {
		score := 0
		for _, value := range doc {
			for _, word := range tokenize(fmt.Sprint(value)) {
				for _, term := range terms {
					if word == term {
						score++
					}
				}
			}
		}
		if score > 0 {
			hits = append(hits, hit{id: id, score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})

	total := int64(len(hits))
	from := offset(page, perPage)
	if from >= len(hits) {
		return []uint64{}, total, nil
	}
	to := from + perPage
	if perPage <= 0 || to > len(hits) {
		to = len(hits)
	}

	ids := make([]uint64, 0, to-from)
	for _, h := range hits[from:to] {
		ids = append(ids, h.id)
	}
	return ids, total, nil
}

// Document returns a stored document, for inspection
func (m *Memory) Document(index string, id uint64) (map[string]any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[index][id]
	return doc, ok
}

// Len returns the number of documents stored in index
func (m *Memory) Len(index string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[index])
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
