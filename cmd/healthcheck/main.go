// main.go
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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/localnerve/buildnet/internal/config"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/logging"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/localnerve/buildnet/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to a .env file")
	flag.Parse()

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			logrus.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New("error", cfg.LogFormat)

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	var index search.Index = search.Noop{}
	if cfg.SearchURL != "" {
		index, err = search.NewElastic(search.ElasticConfig{
			Addresses: []string{cfg.SearchURL},
			Username:  cfg.SearchUsername,
			Password:  cfg.SearchPassword,
			Prefix:    cfg.SearchPrefix,
		})
		if err != nil {
			log.Fatalf("Failed to create search client: %v", err)
		}
	}

	st, err := database.NewStore(db, index, log)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Perform health check
	result := services.HealthCheck(ctx, cfg, st)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Degraded search still serves requests
	if result.Status == "unhealthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
