// sync.go
//
// A community service for builders, their firms and their building projects
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of buildnet.
// buildnet is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// buildnet is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with buildnet.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package search

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/localnerve/buildnet/internal/metrics"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Indexable is implemented by models whose text columns are mirrored into the index.
// The table name is the index collection name.
type Indexable interface {
	TableName() string
	SearchFields() []string
}

// Sync is a gorm plugin that mirrors committed writes of Indexable models into an Index.
//
// Statements run inside a context carrying a Changeset only record their changes;
// the owner of the transaction applies them after commit. Any other statement is
// applied right after its own commit. Statements that skip hooks (UpdateColumn)
// are not mirrored.
type Sync struct {
	index  Index
	log    *logrus.Entry
	fields sync.Map // table name -> []string
}

var _ gorm.Plugin = (*Sync)(nil)

// NewSync creates the plugin. A nil index disables mirroring.
func NewSync(index Index, logger *logrus.Logger) *Sync {
	if index == nil {
		index = Noop{}
	}
	return &Sync{
		index: index,
		log:   logger.WithField("component", "search"),
	}
}

// Index returns the index the plugin writes to
func (s *Sync) Index() Index {
	return s.index
}

// Name implements gorm.Plugin
func (s *Sync) Name() string {
	return "search:sync"
}

// Initialize implements gorm.Plugin
func (s *Sync) Initialize(db *gorm.DB) error {
	const afterCommit = "gorm:commit_or_rollback_transaction"

	if err := db.Callback().Create().After(afterCommit).Register("search:sync_create", s.capture(OpUpsert)); err != nil {
		return err
	}
	if err := db.Callback().Update().After(afterCommit).Register("search:sync_update", s.capture(OpUpsert)); err != nil {
		return err
	}
	return db.Callback().Delete().After(afterCommit).Register("search:sync_delete", s.capture(OpDelete))
}

func (s *Sync) capture(op Op) func(*gorm.DB) {
	return func(db *gorm.DB) {
		stmt := db.Statement
		if db.Error != nil || stmt.Schema == nil || stmt.SkipHooks {
			return
		}

		fields, ok := s.searchFields(stmt.Schema)
		if !ok {
			return
		}

		cs := ChangesetFrom(stmt.Context)
		immediate := cs == nil
		if immediate {
			cs = NewChangeset()
		}

		s.collect(stmt.Context, stmt.Schema, fields, stmt.ReflectValue, op, cs)

		if immediate {
			s.Apply(stmt.Context, cs)
		}
	}
}

func (s *Sync) searchFields(sch *schema.Schema) ([]string, bool) {
	if cached, ok := s.fields.Load(sch.Table); ok {
		fields := cached.([]string)
		return fields, len(fields) > 0
	}

	var fields []string
	if model, ok := reflect.New(sch.ModelType).Interface().(Indexable); ok {
		fields = model.SearchFields()
	}
	s.fields.Store(sch.Table, fields)

	return fields, len(fields) > 0
}

func (s *Sync) collect(ctx context.Context, sch *schema.Schema, fields []string, rv reflect.Value, op Op, cs *Changeset) {
	pk := sch.PrioritizedPrimaryField
	if pk == nil || !rv.IsValid() {
		return
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			s.collect(ctx, sch, fields, rv.Index(i), op, cs)
		}
		return
	case reflect.Ptr, reflect.Interface:
		if !rv.IsNil() {
			s.collect(ctx, sch, fields, rv.Elem(), op, cs)
		}
		return
	case reflect.Struct:
		if rv.Type() != sch.ModelType {
			return
		}
	default:
		return
	}

	raw, zero := pk.ValueOf(ctx, rv)
	if zero {
		return
	}
	id, ok := documentID(raw)
	if !ok {
		return
	}

	if op == OpDelete {
		cs.Delete(sch.Table, id)
		return
	}

	doc := make(map[string]any, len(fields))
	for _, name := range fields {
		field := sch.LookUpField(name)
		if field == nil {
			continue
		}
		value, _ := field.ValueOf(ctx, rv)
		doc[field.DBName] = plain(value)
	}
	cs.Upsert(sch.Table, id, doc)
}

// Apply pushes every change to the index and returns the number that failed.
// Failures are logged and counted, they never reach the caller as errors.
func (s *Sync) Apply(ctx context.Context, cs *Changeset) int {
	if cs == nil {
		return 0
	}

	failed := 0
	for _, ch := range cs.Changes() {
		var err error
		switch ch.Op {
		case OpUpsert:
			err = s.index.Upsert(ctx, ch.Index, ch.ID, ch.Doc)
		case OpDelete:
			err = s.index.Delete(ctx, ch.Index, ch.ID)
		}

		if err != nil {
			failed++
			metrics.SearchIndexOps.WithLabelValues(ch.Index, ch.Op.String(), metrics.ResultError).Inc()
			s.log.WithError(err).WithFields(logrus.Fields{
				"index": ch.Index,
				"id":    ch.ID,
				"op":    ch.Op.String(),
			}).Warn("search index update failed")
			continue
		}
		metrics.SearchIndexOps.WithLabelValues(ch.Index, ch.Op.String(), metrics.ResultOK).Inc()
	}

	return failed
}

// Reindex replays every row of the given models into the index, batchSize rows at a time.
// It returns the number of documents written.
func (s *Sync) Reindex(ctx context.Context, db *gorm.DB, batchSize int, models ...Indexable) (int, error) {
	if batchSize <= 0 {
		batchSize = 200
	}

	total := 0
	for _, model := range models {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return total, fmt.Errorf("failed to parse %T: %w", model, err)
		}
		sch := stmt.Schema

		fields, ok := s.searchFields(sch)
		if !ok {
			continue
		}

		rows := reflect.New(reflect.SliceOf(sch.ModelType))
		result := db.WithContext(ctx).Model(model).FindInBatches(rows.Interface(), batchSize, func(tx *gorm.DB, batch int) error {
			cs := NewChangeset()
			s.collect(ctx, sch, fields, rows.Elem(), OpUpsert, cs)
			if failed := s.Apply(ctx, cs); failed > 0 {
				return fmt.Errorf("%s batch %d: %d documents not indexed", sch.Table, batch, failed)
			}
			total += cs.Len()
			return nil
		})
		if result.Error != nil {
			return total, result.Error
		}

		s.log.WithFields(logrus.Fields{"index": sch.Table, "total": total}).Info("reindexed")
	}

	return total, nil
}

func documentID(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case int64:
		return uint64(v), v > 0
	case int:
		return uint64(v), v > 0
	}
	return 0, false
}

func plain(value any) any {
	switch v := value.(type) {
	case fmt.Stringer:
		return v.String()
	case *string:
		if v == nil {
			return ""
		}
		return *v
	}
	return value
}
