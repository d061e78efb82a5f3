// e2e_test.go
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

package main_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/logging"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/localnerve/buildnet/internal/testutil"
)

// TestE2EWithFullStack tests the entire service stack
func TestE2EWithFullStack(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}

	tc, err := testutil.CreateAllTestContainers(t)
	if err != nil {
		t.Fatalf("Failed to start test containers: %v", err)
	}
	defer tc.Terminate(t)

	baseURL := tc.BaseURL

	t.Run("HealthCheck", func(t *testing.T) {
		testHealthCheck(t, tc)
	})

	t.Run("PrometheusMetrics", func(t *testing.T) {
		testPrometheusMetrics(t, baseURL)
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		testSwaggerUI(t, baseURL)
	})

	t.Run("CommunityFlow", func(t *testing.T) {
		testCommunityFlow(t, baseURL)
	})
}

func testHealthCheck(t *testing.T, tc *testutil.TestContainers) {
	cfg := tc.Config()
	log := logging.Discard()

	db, err := database.Connect(cfg, log)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	defer database.Close(db)

	index, err := search.NewElastic(search.ElasticConfig{Addresses: []string{cfg.SearchURL}})
	if err != nil {
		t.Fatalf("Failed to create search client: %v", err)
	}
	st, err := database.NewStore(db, index, log)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := services.HealthCheck(ctx, cfg, st)
	if result.Status != "healthy" {
		t.Errorf("Health check failed: %+v", result)
	}

	t.Logf("Health check passed: status=%s, database=%s, search=%s",
		result.Status, result.Database, result.Search)
}

func testPrometheusMetrics(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/metrics")
	if err != nil {
		t.Fatalf("Failed to get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	testutil.AssertStatus(t, resp, http.StatusOK)
	if !bytes.Contains(body, []byte("buildnet_")) {
		t.Errorf("Expected buildnet metrics, got %d bytes", len(body))
	}
}

func testSwaggerUI(t *testing.T, baseURL string) {
	resp, err := http.Get(baseURL + "/swagger/index.html")
	if err != nil {
		t.Fatalf("Failed to get Swagger UI: %v", err)
	}
	defer resp.Body.Close()

	testutil.AssertStatus(t, resp, http.StatusOK)
}

type session struct {
	Token string `json:"token"`
}

type page struct {
	Items []map[string]any `json:"items"`
	Total int64            `json:"total"`
}

func register(t *testing.T, baseURL, nickname string) string {
	t.Helper()
	resp := testutil.SendJSON(t, "POST", baseURL+"/api/register", "", map[string]string{
		"nickname": nickname,
		"email":    nickname + "@example.com",
		"name":     "E2E",
		"surname":  "Builder",
		"password": "Concrete9",
	})
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var s session
	testutil.ParseJSON(t, resp, &s)
	return s.Token
}

func testCommunityFlow(t *testing.T, baseURL string) {
	ada := register(t, baseURL, "e2eada")
	bob := register(t, baseURL, "e2ebob")

	resp := testutil.SendJSON(t, "POST", baseURL+"/api/users/e2ebob/follow", ada, nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = testutil.SendJSON(t, "POST", baseURL+"/api/posts", bob, map[string]string{"body": "Scaffolding inspected"})
	testutil.AssertStatus(t, resp, http.StatusCreated)
	resp.Body.Close()

	resp = testutil.SendJSON(t, "GET", baseURL+"/api/feed", ada, nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var feed page
	testutil.ParseJSON(t, resp, &feed)
	if feed.Total != 1 {
		t.Errorf("Expected 1 post in feed, got %d", feed.Total)
	}

	// The index refreshes about once a second
	var found page
	for i := 0; i < 10 && found.Total == 0; i++ {
		time.Sleep(500 * time.Millisecond)
		resp = testutil.SendJSON(t, "GET", baseURL+"/api/search?q=scaffolding", "", nil)
		testutil.AssertStatus(t, resp, http.StatusOK)
		testutil.ParseJSON(t, resp, &found)
	}
	if found.Total != 1 {
		t.Errorf("Expected the post to be searchable, got %d", found.Total)
	}

	resp = testutil.SendJSON(t, "GET", baseURL+"/api/nothing", "", nil)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}
