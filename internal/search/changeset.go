package search

import (
	"context"
	"sync"
)

// Op is a pending index operation
type Op int

const (
	OpUpsert Op = iota + 1
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Change is one document operation waiting for commit
type Change struct {
	Index string
	ID    uint64
	Op    Op
	Doc   map[string]any
}

type changeKey struct {
	index string
	id    uint64
}

// Changeset collects the index operations of one unit of work.
// The last operation recorded for a document wins.
type Changeset struct {
	mu      sync.Mutex
	order   []changeKey
	changes map[changeKey]Change
}

func NewChangeset() *Changeset {
	return &Changeset{changes: make(map[changeKey]Change)}
}

// Upsert records a create or update of a document
func (c *Changeset) Upsert(index string, id uint64, doc map[string]any) {
	c.record(Change{Index: index, ID: id, Op: OpUpsert, Doc: doc})
}

// Delete records a document removal
func (c *Changeset) Delete(index string, id uint64) {
	c.record(Change{Index: index, ID: id, Op: OpDelete})
}

func (c *Changeset) record(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := changeKey{index: ch.Index, id: ch.ID}
	if _, seen := c.changes[key]; !seen {
		c.order = append(c.order, key)
	}
	c.changes[key] = ch
}

// Changes returns the recorded operations in first-seen order
func (c *Changeset) Changes() []Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Change, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.changes[key])
	}
	return out
}

// Len returns the number of distinct documents touched
func (c *Changeset) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.order)
}

type changesetKey struct{}

// WithChangeset returns a context whose writes are collected into cs instead of
// being pushed to the index one statement at a time.
func WithChangeset(ctx context.Context, cs *Changeset) context.Context {
	return context.WithValue(ctx, changesetKey{}, cs)
}

// ChangesetFrom returns the changeset carried by ctx, or nil
func ChangesetFrom(ctx context.Context) *Changeset {
	if ctx == nil {
		return nil
	}
	cs, _ := ctx.Value(changesetKey{}).(*Changeset)
	return cs
}
