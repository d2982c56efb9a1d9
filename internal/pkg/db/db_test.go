package db

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"poker-bankroll/internal/config"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, time.Minute, orDefault(0, time.Minute))
	assert.Equal(t, time.Minute, orDefault(-time.Second, time.Minute))
	assert.Equal(t, time.Second, orDefault(time.Second, time.Minute))
}

func TestPool_ReadyOnlyAfterMigrate(t *testing.T) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := NewPool(ctx, &config.DatabaseConfig{
		Host:     host,
		Port:     port.Int(),
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		PoolSize: 2,
	})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	assert.ErrorIs(t, pool.HealthCheck(ctx), ErrSchemaMissing)

	require.NoError(t, Migrate(ctx, pool.Pool))
	require.NoError(t, Migrate(ctx, pool.Pool), "migrations are idempotent")
	assert.NoError(t, pool.HealthCheck(ctx))

	var appName string
	require.NoError(t, pool.QueryRow(ctx, "SHOW application_name").Scan(&appName))
	assert.Equal(t, ApplicationName, appName)
}

func TestSchemaReady_Unreachable(t *testing.T) {
	pool, err := pgxpool.New(context.Background(), "postgres://nobody@127.0.0.1:1/none?connect_timeout=1")
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = SchemaReady(ctx, pool)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSchemaMissing)
}
