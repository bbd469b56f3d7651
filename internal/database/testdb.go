package database

import (
	"context"
	"time"

	"finpulse/internal/model"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestDatabase starts a disposable Postgres container, applies the
// schema migrations and returns the config to connect to it together with
// a teardown function.
func SetupTestDatabase() (model.DatabaseConfig, func(context.Context) error, error) {
	var config model.DatabaseConfig

	ctx := context.Background()
	container, err := postgres.RunContainer(
		ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("finpulse_test"),
		postgres.WithUsername("finpulse"),
		postgres.WithPassword("finpulse"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return config, nil, err
	}
	teardown := func(ctx context.Context) error {
		return container.Terminate(ctx)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return config, teardown, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return config, teardown, err
	}

	config = model.DatabaseConfig{
		Database: "finpulse_test",
		Username: "finpulse",
		Password: "finpulse",
		Host:     host,
		Port:     port.Port(),
	}

	if err := Migrate(config); err != nil {
		return config, teardown, err
	}

	return config, teardown, nil
}
