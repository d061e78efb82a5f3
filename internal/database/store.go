package database

import (
	"context"
	"fmt"

	"github.com/localnerve/buildnet/internal/search"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store is the handle services receive: the database plus the search mirror.
type Store struct {
	DB   *gorm.DB
	Sync *search.Sync
	Log  *logrus.Entry
}

// NewStore registers the search sync plugin on db and wraps both.
// A nil index disables search mirroring.
func NewStore(db *gorm.DB, index search.Index, log *logrus.Logger) (*Store, error) {
	sync := search.NewSync(index, log)
	if err := db.Use(sync); err != nil {
		return nil, fmt.Errorf("failed to register search sync: %w", err)
	}

	return &Store{
		DB:   db,
		Sync: sync,
		Log:  log.WithField("component", "store"),
	}, nil
}

// Index returns the search index behind the store
func (s *Store) Index() search.Index {
	return s.Sync.Index()
}

// Dialect returns the name of the database dialect in use
func (s *Store) Dialect() string {
	return s.DB.Dialector.Name()
}

// Transaction runs fn in a database transaction. Search index changes made by fn
// are applied only after a successful commit and are dropped on rollback.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	cs := search.NewChangeset()

	if err := s.DB.WithContext(search.WithChangeset(ctx, cs)).Transaction(fn); err != nil {
		return err
	}

	if cs.Len() > 0 {
		s.Sync.Apply(ctx, cs)
	}
	return nil
}
