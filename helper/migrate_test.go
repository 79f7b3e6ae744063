package helper_test

import (
	"testing"

	"clinic/config"
	"clinic/helper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationConfig() *config.Config {
	cfg := &config.Config{}
	cfg.DB.Postgres.Write.Username = "clinic"
	cfg.DB.Postgres.Write.Password = "p@ss/word"
	cfg.DB.Postgres.Write.Host = "db"
	cfg.DB.Postgres.Write.Port = "5432"
	cfg.DB.Postgres.Write.Name = "clinic"
	cfg.DB.Postgres.Write.SSLMode = "disable"
	cfg.DB.Postgres.MigrationTable = "schema_migrations"

	return cfg
}

func TestMigrationDSN(t *testing.T) {
	t.Run("escapes credentials", func(t *testing.T) {
		dsn := helper.MigrationDSN(migrationConfig())

		assert.Equal(t, "postgres://clinic:p%40ss%2Fword@db:5432/clinic?sslmode=disable&x-migrations-table=schema_migrations", dsn)
	})

	t.Run("prefixes the database name", func(t *testing.T) {
		cfg := migrationConfig()
		cfg.DB.Postgres.Prefix = "test_"

		assert.Contains(t, helper.MigrationDSN(cfg), "@db:5432/test_clinic?")
	})
}

func TestMigrate_UnknownDirection(t *testing.T) {
	err := helper.Migrate(migrationConfig(), "sideways")

	require.ErrorIs(t, err, helper.ErrUnknownDirection)
	assert.Contains(t, err.Error(), "sideways")
}

func TestDirections(t *testing.T) {
	assert.Equal(t, []string{helper.MigrateDown, helper.MigrateDrop, helper.MigrateStepUp, helper.MigrateUp}, helper.Directions())
}
