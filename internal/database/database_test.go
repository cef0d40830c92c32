package database

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func mustStartMongoContainer() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	dbContainer, err := mongodb.Run(context.Background(), "mongo:latest")
	if err != nil {
		return nil, err
	}

	uri, err := dbContainer.ConnectionString(context.Background())
	if err != nil {
		return dbContainer.Terminate, err
	}

	os.Setenv("MONGO_URI", uri)

	return dbContainer.Terminate, err
}

func TestMain(m *testing.M) {
	teardown, err := mustStartMongoContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start mongodb container")
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatal().Err(err).Msg("Could not teardown mongodb container")
	}
}

func TestNew(t *testing.T) {
	srv := New()
	if srv == nil {
		t.Fatal("New() returned nil")
	}
}

func TestHealth(t *testing.T) {
	srv := New()

	stats := srv.Health()

	if stats["message"] != "It's healthy" {
		t.Fatalf("expected message to be 'It's healthy', got %s", stats["message"])
	}
}
