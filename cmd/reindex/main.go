package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/buildnet/internal/config"
	"github.com/localnerve/buildnet/internal/database"
	"github.com/localnerve/buildnet/internal/logging"
	"github.com/localnerve/buildnet/internal/search"
	"github.com/sirupsen/logrus"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var batchSize int
	flag.IntVar(&batchSize, "batch", 200, "rows read per batch")
	flag.Parse()

	usage := `
Rebuild the search index from the database.

Usage:

reindex [-h] [-f ENV_FILE_PATH] [-batch N]

Every user, company, build and post is written to the index at SEARCH_URL.
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		if err := godotenv.Load(envFilename); err != nil {
			logrus.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.SearchURL == "" {
		log.Fatal("SEARCH_URL is required to reindex")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	index, err := database.OpenIndex(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}

	sync := search.NewSync(index, log)
	total, err := sync.Reindex(ctx, db, batchSize, database.SearchModels()...)
	if err != nil {
		log.WithField("written", total).Fatalf("Reindex failed: %v", err)
	}

	log.WithField("written", total).Info("Reindex complete")
}
