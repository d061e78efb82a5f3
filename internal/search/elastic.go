// elastic.go
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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticConfig holds the connection settings for an Elasticsearch cluster
type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	// Prefix is prepended to every collection name
	Prefix string
	// Refresh is passed as the refresh parameter of writes ("", "true", "wait_for")
	Refresh string
}

// Elastic is an Index backed by Elasticsearch
type Elastic struct {
	client  *elasticsearch.Client
	prefix  string
	refresh string
}

var _ Index = (*Elastic)(nil)

// NewElastic creates the client. No request is made until first use.
func NewElastic(cfg ElasticConfig) (*Elastic, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Elastic{
		client:  client,
		prefix:  cfg.Prefix,
		refresh: cfg.Refresh,
	}, nil
}

func (e *Elastic) name(index string) string {
	return e.prefix + index
}

// Upsert indexes doc under id, replacing any previous version
func (e *Elastic) Upsert(ctx context.Context, index string, id uint64, doc map[string]any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%d: %w", index, id, err)
	}

	opts := []func(*esapi.IndexRequest){
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(strconv.FormatUint(id, 10)),
	}
	if e.refresh != "" {
		opts = append(opts, e.client.Index.WithRefresh(e.refresh))
	}

	res, err := e.client.Index(e.name(index), bytes.NewReader(body), opts...)
	if err != nil {
		return fmt.Errorf("failed to index %s/%d: %w", index, id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res, "index %s/%d", index, id)
	}
	return nil
}

// Delete removes a document. Removing a missing document is not an error.
func (e *Elastic) Delete(ctx context.Context, index string, id uint64) error {
	opts := []func(*esapi.DeleteRequest){
		e.client.Delete.WithContext(ctx),
	}
	if e.refresh != "" {
		opts = append(opts, e.client.Delete.WithRefresh(e.refresh))
	}

	res, err := e.client.Delete(e.name(index), strconv.FormatUint(id, 10), opts...)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%d: %w", index, id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError(res, "delete %s/%d", index, id)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Query runs a multi_match over every field of the collection
func (e *Elastic) Query(ctx context.Context, index, text string, page, perPage int) ([]uint64, int64, error) {
	var buf bytes.Buffer
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": []string{"*"},
			},
		},
		"from": offset(page, perPage),
		"size": perPage,
	}
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, 0, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.name(index)),
		e.client.Search.WithBody(&buf),
		e.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search %s: %w", index, err)
	}
	defer res.Body.Close()

	// Nothing has been indexed into this collection yet
	if res.StatusCode == http.StatusNotFound {
		return nil, 0, nil
	}
	if res.IsError() {
		return nil, 0, responseError(res, "search %s", index)
	}

	var decoded searchResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]uint64, 0, len(decoded.Hits.Hits))
	for _, hit := range decoded.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, decoded.Hits.Total.Value, nil
}

// EnsureIndex creates the collection with mapping if it does not exist
func (e *Elastic) EnsureIndex(ctx context.Context, index string, mapping []byte) error {
	name := e.name(index)

	res, err := e.client.Indices.Exists([]string{name}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", name, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	opts := []func(*esapi.IndicesCreateRequest){
		e.client.Indices.Create.WithContext(ctx),
	}
	if len(mapping) > 0 {
		opts = append(opts, e.client.Indices.Create.WithBody(bytes.NewReader(mapping)))
	}

	res, err = e.client.Indices.Create(name, opts...)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res, "create index %s", name)
	}
	return nil
}

// Ping checks the cluster is reachable
func (e *Elastic) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to ping elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res, "ping")
	}
	return nil
}

func responseError(res *esapi.Response, format string, args ...any) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("elasticsearch %s: %s: %s", fmt.Sprintf(format, args...), res.Status(), bytes.TrimSpace(body))
}
