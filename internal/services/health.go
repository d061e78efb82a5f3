package services

import (
	"context"
	"fmt"
	"time"

	"github.com/localnerve/buildnet/internal/config"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/utils"
)

// HealthCheckResult is the outcome of HealthCheck
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Search       string            `json:"search"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// pinger is implemented by indexes that can report their reachability
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports on the database and the search index. A database failure makes
// the service unhealthy; an unreachable index only degrades it.
func HealthCheck(ctx context.Context, cfg *config.Config, st *database.Store) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}
	log := st.Log.WithField("check", "health")

	// Check database connectivity
	sqlDB, err := st.DB.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.WithError(err).Error("health check failed - database connection")
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
		log.WithError(err).Error("health check failed - database ping")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check search index connectivity
	switch {
	case cfg.SearchURL == "":
		result.Search = "disabled"
	default:
		var err error
		if p, ok := st.Index().(pinger); ok {
			err = p.Ping(ctx)
		} else {
			err = utils.PingService(cfg.SearchURL, 1500*time.Millisecond)
		}

		if err != nil {
			if result.Status == "healthy" {
				result.Status = "degraded"
			}
			result.Search = "unreachable"
			result.Details["search_error"] = err.Error()
			log.WithError(err).Warn("health check - search index unreachable")
		} else {
			result.Search = "ok"
			result.Details["search_url"] = cfg.SearchURL
		}
	}

	if result.Status == "healthy" {
		log.Debug("health check passed - all systems operational")
	}

	return result
}
