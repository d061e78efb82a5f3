package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/buildnet/internal/logging"
	"github.com/localnerve/buildnet/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var backendsOnly bool
	flag.BoolVar(&backendsOnly, "backends", false, "start only the database and Elasticsearch")
	flag.Parse()

	usage := `
Run the buildnet testcontainers with the environment variables from the .env file.

Usage:

testcontainers [-h] [-backends] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file
-backends:     skip the buildnet container, for running the server from source

example
  testcontainers -f /path/to/something/.env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	log := logging.New("info", "text")

	if envFilename != "" {
		log.Infof("Loading environment variables from %s", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	} else {
		log.Info("No environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	started := make(chan *testutil.TestContainers, 1)
	go func() {
		create := testutil.CreateAllTestContainers
		if backendsOnly {
			create = testutil.CreateBackendContainers
		}
		tc, err := create(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v", err)
		}

		cfg := tc.Config()
		fmt.Printf("DB_TYPE=%s\nDB_HOST=%s\nDB_PORT=%s\nSEARCH_URL=%s\n", cfg.DBType, cfg.DBHost, cfg.DBPort, cfg.SearchURL)
		started <- tc
	}()

	sig := <-sigs
	log.Infof("Received signal: %v, terminating test containers...", sig)
	select {
	case tc := <-started:
		tc.Terminate(nil)
	default:
		log.Warn("Containers were still starting, the resource reaper will remove them")
	}
}
