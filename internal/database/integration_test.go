package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/buildnet/data"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/logging"
	"github.com/localnerve/buildnet/internal/models"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/localnerve/buildnet/internal/testutil"
	"gorm.io/gorm"
)

// TestWithContainers runs the store against a real database and Elasticsearch
func TestWithContainers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	tc, err := testutil.CreateBackendContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	cfg := tc.Config()
	log := logging.Discard()

	db, err := database.Connect(cfg, log)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	index, err := search.NewElastic(search.ElasticConfig{
		Addresses: []string{cfg.SearchURL},
		Prefix:    cfg.SearchPrefix,
		Refresh:   "true",
	})
	if err != nil {
		t.Fatalf("Failed to create search client: %v", err)
	}
	for _, m := range database.SearchModels() {
		mapping, err := data.SearchMapping(m.TableName())
		if err != nil {
			t.Fatalf("Missing mapping: %v", err)
		}
		if err := index.EnsureIndex(ctx, m.TableName(), mapping); err != nil {
			t.Fatalf("Failed to create index %s: %v", m.TableName(), err)
		}
	}

	st, err := database.NewStore(db, index, log)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	t.Run("CommittedRowsAreSearchable", func(t *testing.T) {
		founder := testutil.User(t, st, "foundation")
		company, _ := testutil.Company(t, st, founder, "Granite Works")

		ids, total, err := index.Query(ctx, "companies", "granite", 1, 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if total != 1 || len(ids) != 1 || ids[0] != company.CompanyID {
			t.Errorf("Expected company %d, got ids=%v total=%d", company.CompanyID, ids, total)
		}
	})

	t.Run("RolledBackRowsAreNotSearchable", func(t *testing.T) {
		err := st.Transaction(ctx, func(tx *gorm.DB) error {
			user := models.User{Nickname: "ghostwriter", Email: "ghost@example.com", Name: "Ghost", PasswordHash: "x"}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return gorm.ErrInvalidTransaction
		})
		if err == nil {
			t.Fatal("Expected transaction to fail")
		}

		_, total, err := index.Query(ctx, "users", "ghostwriter", 1, 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if total != 0 {
			t.Errorf("Expected no hits, got %d", total)
		}
	})

	t.Run("FollowIsIdempotent", func(t *testing.T) {
		a := testutil.User(t, st, "follower")
		b := testutil.User(t, st, "followed")

		for i := 0; i < 2; i++ {
			if _, err := database.AddFollow(db.WithContext(ctx), a.UserID, b.UserID); err != nil {
				t.Fatalf("AddFollow failed: %v", err)
			}
		}
		ok, err := database.IsFollowing(db, a.UserID, b.UserID)
		if err != nil || !ok {
			t.Errorf("Expected edge, got %v %v", ok, err)
		}
	})

	t.Run("Ping", func(t *testing.T) {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := index.Ping(pctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}
