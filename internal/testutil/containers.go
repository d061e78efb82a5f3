// containers.go
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

package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/localnerve/buildnet/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	appImageName   = "buildnet-test:latest"
	searchPort     = "9200/tcp"
	dbNetworkAlias = "db"
	esNetworkAlias = "search"
)

// TestContainers is a running database, search cluster and, optionally, the service itself
type TestContainers struct {
	Network             *testcontainers.DockerNetwork
	DBContainer         testcontainers.Container
	SearchContainer     testcontainers.Container
	AppContainer        testcontainers.Container
	AppBuilderContainer testcontainers.Container

	dbType   string
	dbPort   nat.Port
	dbHost   string
	dbMapped string

	// SearchURL is the host-reachable Elasticsearch address
	SearchURL string
	// BaseURL is the host-reachable service address, empty without the app container
	BaseURL string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AppContainer != nil {
		if err := tc.AppContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate buildnet: %v", err)
		}
	}
	if tc.AppBuilderContainer != nil {
		if err := tc.AppBuilderContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate buildnet builder: %v", err)
		}
	}
	if tc.SearchContainer != nil {
		if err := tc.SearchContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate Elasticsearch: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// Config returns a configuration that reaches the containers from the host
func (tc *TestContainers) Config() *config.Config {
	return &config.Config{
		Port:              "3000",
		BaseURL:           tc.BaseURL,
		DBType:            tc.dbType,
		DBHost:            tc.dbHost,
		DBPort:            tc.dbMapped,
		DBDatabase:        env("DB_DATABASE", "buildnet"),
		DBUser:            env("DB_USER", "buildnet"),
		DBPassword:        env("DB_PASSWORD", "buildnet"),
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
		SearchURL:         tc.SearchURL,
		SearchPrefix:      "test_",
		SecretKey:         env("SECRET_KEY", "integration-secret"),
		SessionTTL:        time.Hour,
		ResetTokenTTL:     300 * time.Second,
		PostsPerPage:      10,
		WebCheckTimeout:   5 * time.Second,
		LogLevel:          "warn",
		LogFormat:         "text",
	}
}

// CreateBackendContainers starts the database and Elasticsearch on a private network
func CreateBackendContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	tc.Network = nw

	if err := tc.startDB(ctx, t); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start database")
	}
	if err := tc.startSearch(ctx); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start Elasticsearch")
	}

	logMessage(t, "DB=%s:%s SEARCH_URL=%s", tc.dbHost, tc.dbMapped, tc.SearchURL)
	return tc, nil
}

// CreateAllTestContainers starts the backends plus the service image,
// building the image from the Dockerfile when it is not present locally.
func CreateAllTestContainers(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()

	tc, err := CreateBackendContainers(t)
	if err != nil {
		return nil, err
	}

	if err := tc.startApp(ctx, t); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to start buildnet")
	}

	logMessage(t, "BASE_URL=%s", tc.BaseURL)
	logMessage(t, "buildnet testcontainers started successfully")
	return tc, nil
}

func (tc *TestContainers) startDB(ctx context.Context, t *testing.T) error {
	tc.dbType = env("DB_TYPE", "postgres")

	defaultImage, defaultPort := "postgres:17-alpine", "5432"
	var waitFor wait.Strategy
	switch tc.dbType {
	case "mysql", "mariadb":
		defaultImage, defaultPort = "mariadb:11", "3306"
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported container database type: %s", tc.dbType)
	}

	port, err := nat.NewPort("tcp", env("DB_PORT", defaultPort))
	if err != nil {
		return fmt.Errorf("failed to create DB port: %w", err)
	}
	tc.dbPort = port

	if tc.dbType == "mysql" || tc.dbType == "mariadb" {
		waitFor = wait.ForListeningPort(port).WithStartupTimeout(60 * time.Second)
	} else {
		waitFor = wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        env("DB_IMAGE", defaultImage),
			ExposedPorts: []string{string(port)},
			Env:          dbInitEnv(tc.dbType),
			WaitingFor:   waitFor,
			Networks:     []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {dbNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.DBContainer = dbContainer

	tc.dbHost, _ = dbContainer.Host(ctx)
	mapped, err := dbContainer.MappedPort(ctx, port)
	if err != nil {
		return fmt.Errorf("failed to map DB port: %w", err)
	}
	tc.dbMapped = mapped.Port()

	if tc.dbType == "mysql" || tc.dbType == "mariadb" {
		return waitForMySQL(t, tc.dbHost, tc.dbMapped)
	}
	return nil
}

func (tc *TestContainers) startSearch(ctx context.Context) error {
	esContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        env("SEARCH_IMAGE", "docker.elastic.co/elasticsearch/elasticsearch:8.17.1"),
			ExposedPorts: []string{searchPort},
			Env: map[string]string{
				"discovery.type":         "single-node",
				"xpack.security.enabled": "false",
				"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
			},
			WaitingFor: wait.ForHTTP("/_cluster/health").
				WithPort(searchPort).
				WithStartupTimeout(2 * time.Minute),
			Networks: []string{tc.Network.Name},
			NetworkAliases: map[string][]string{
				tc.Network.Name: {esNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	tc.SearchContainer = esContainer

	host, _ := esContainer.Host(ctx)
	mapped, err := esContainer.MappedPort(ctx, searchPort)
	if err != nil {
		return fmt.Errorf("failed to map search port: %w", err)
	}
	tc.SearchURL = fmt.Sprintf("http://%s:%s", host, mapped.Port())
	return nil
}

func (tc *TestContainers) startApp(ctx context.Context, t *testing.T) error {
	debugContainer := os.Getenv("DEBUG_CONTAINER")

	exists, err := imageExists(ctx, appImageName)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}

	appPortNumber := env("PORT", "3000")
	appPort, err := nat.NewPort("tcp", appPortNumber)
	if err != nil {
		return fmt.Errorf("failed to create buildnet port: %w", err)
	}

	exposedPorts := []string{string(appPort)}
	if debugContainer == "true" {
		exposedPorts = append(exposedPorts, "2345/tcp")
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer == "true" {
			hostConfig.PortBindings = nat.PortMap{
				"2345/tcp": []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: "2345"},
				},
			}
			hostConfig.CapAdd = []string{"SYS_PTRACE"}
			hostConfig.SecurityOpt = []string{"apparmor:unconfined"}
		}
	}

	var waitStrategy wait.Strategy
	waitStrategy = wait.ForHTTP("/health").WithPort(appPort).WithStartupTimeout(30 * time.Second)
	if debugContainer == "true" {
		waitStrategy = wait.ForLog("API server listening at: [::]:2345").WithStartupTimeout(5 * time.Minute)
	}

	cfg := tc.Config()
	request := testcontainers.ContainerRequest{
		ExposedPorts: exposedPorts,
		Env: map[string]string{
			"PORT":                appPortNumber,
			"DB_TYPE":             tc.dbType,
			"DB_HOST":             dbNetworkAlias,
			"DB_PORT":             tc.dbPort.Port(),
			"DB_DATABASE":         cfg.DBDatabase,
			"DB_USER":             cfg.DBUser,
			"DB_PASSWORD":         cfg.DBPassword,
			"DB_CONNECTION_LIMIT": "10",
			"SEARCH_URL":          fmt.Sprintf("http://%s:9200", esNetworkAlias),
			"SEARCH_PREFIX":       cfg.SearchPrefix,
			"SECRET_KEY":          cfg.SecretKey,
			"ADMIN_EMAILS":        os.Getenv("ADMIN_EMAILS"),
			"LOG_FORMAT":          "text",
		},
		HostConfigModifier: hostConfigModifier,
		WaitingFor:         waitStrategy,
		Networks:           []string{tc.Network.Name},
	}

	if debugContainer == "true" {
		request.Entrypoint = []string{
			"/usr/local/bin/dlv",
			"--listen=:2345",
			"--headless=true",
			"--api-version=2",
			"--accept-multiclient",
			"exec",
			"./buildnet",
		}
	}

	if !exists {
		sessionID := uuid.New().String()
		buildArgs := map[string]*string{
			"RESOURCE_REAPER_SESSION_ID": &sessionID,
		}
		if debugContainer == "true" {
			buildArgs["DEBUG"] = &debugContainer
		}

		buildContext := env("TESTCONTAINERS_BUILD_CONTEXT", "../..")

		logMessage(t, "Image %s does not exist, building...", appImageName)
		builder, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				FromDockerfile: testcontainers.FromDockerfile{
					Context:    buildContext,
					Dockerfile: "Dockerfile",
					Repo:       "buildnet-test-builder",
					Tag:        "latest",
					BuildArgs:  buildArgs,
					BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
						opts.Target = "builder"
					},
					PrintBuildLog: true,
				},
			},
			Started: false,
		})
		if err != nil {
			return fmt.Errorf("failed to build buildnet-test-builder: %w", err)
		}
		tc.AppBuilderContainer = builder

		parts := strings.Split(appImageName, ":")
		request.FromDockerfile = testcontainers.FromDockerfile{
			Context:    buildContext,
			Dockerfile: "Dockerfile",
			Repo:       parts[0],
			Tag:        parts[1],
			KeepImage:  true,
			BuildArgs:  buildArgs,
			BuildOptionsModifier: func(opts *build.ImageBuildOptions) {
				opts.Target = "runtime"
			},
			PrintBuildLog: true,
		}
	} else {
		logMessage(t, "Image %s exists, reusing...", appImageName)
		request.Image = appImageName
	}

	appContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		return err
	}
	tc.AppContainer = appContainer

	host, _ := appContainer.Host(ctx)
	mapped, err := appContainer.MappedPort(ctx, appPort)
	if err != nil {
		return fmt.Errorf("failed to map buildnet port: %w", err)
	}
	tc.BaseURL = fmt.Sprintf("http://%s:%s", host, mapped.Port())
	return nil
}

func dbInitEnv(dbType string) map[string]string {
	switch dbType {
	case "mariadb", "mysql":
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": env("DB_ROOT_PASSWORD", "root"),
			"MYSQL_DATABASE":      env("DB_DATABASE", "buildnet"),
			"MYSQL_USER":          env("DB_USER", "buildnet"),
			"MYSQL_PASSWORD":      env("DB_PASSWORD", "buildnet"),
		}
	}
	return map[string]string{
		"POSTGRES_PASSWORD": env("DB_PASSWORD", "buildnet"),
		"POSTGRES_USER":     env("DB_USER", "buildnet"),
		"POSTGRES_DB":       env("DB_DATABASE", "buildnet"),
	}
}

// waitForMySQL pings until the server accepts the application user
func waitForMySQL(t *testing.T, host, port string) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s",
		env("DB_USER", "buildnet"),
		env("DB_PASSWORD", "buildnet"),
		host,
		port,
		env("DB_DATABASE", "buildnet"),
	)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(1 * time.Second)
	}
	logMessage(t, "MariaDB not ready after 30 seconds")
	return err
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func env(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
