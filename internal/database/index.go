package database

import (
	"context"
	"fmt"

	"github.com/localnerve/buildnet/data"
	"github.com/localnerve/buildnet/internal/config"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/sirupsen/logrus"
)

// OpenIndex connects the search index named by SEARCH_URL and creates any missing
// collections with their mappings. An empty SEARCH_URL yields a Noop index.
// An unreachable cluster is logged and the client is still returned; only a bad
// client configuration is an error.
func OpenIndex(ctx context.Context, cfg *config.Config, log *logrus.Logger) (search.Index, error) {
	if cfg.SearchURL == "" {
		log.Warn("SEARCH_URL not set, search index disabled")
		return search.Noop{}, nil
	}

	index, err := search.NewElastic(search.ElasticConfig{
		Addresses: []string{cfg.SearchURL},
		Username:  cfg.SearchUsername,
		Password:  cfg.SearchPassword,
		Prefix:    cfg.SearchPrefix,
	})
	if err != nil {
		return nil, err
	}

	prepared := true
	for _, m := range SearchModels() {
		mapping, err := data.SearchMapping(m.TableName())
		if err != nil {
			return nil, fmt.Errorf("failed to load search mapping: %w", err)
		}
		if err := index.EnsureIndex(ctx, m.TableName(), mapping); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"url":   cfg.SearchURL,
				"index": m.TableName(),
			}).Warn("search index unavailable, continuing without prepared mappings")
			prepared = false
		}
	}

	if prepared {
		log.WithField("url", cfg.SearchURL).Info("connected to search index")
	}
	return index, nil
}
