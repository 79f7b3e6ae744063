package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"slices"

	"clinic/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationSource = "file://migrations/postgres"

const (
	MigrateUp     = "up"
	MigrateStepUp = "step-up"
	MigrateDown   = "down"
	MigrateDrop   = "drop"
)

var ErrUnknownDirection = errors.New("unknown migration direction")

type migrationStep struct {
	apply func(*migrate.Migrate) error
	done  string
}

var migrationSteps = map[string]migrationStep{
	MigrateUp: {
		apply: (*migrate.Migrate).Up,
		done:  "clinic schema is up to date",
	},
	MigrateStepUp: {
		apply: func(mig *migrate.Migrate) error { return mig.Steps(1) },
		done:  "clinic schema moved one version up",
	},
	MigrateDown: {
		apply: func(mig *migrate.Migrate) error { return mig.Steps(-1) },
		done:  "clinic schema moved one version down",
	},
	MigrateDrop: {
		apply: (*migrate.Migrate).Down,
		done:  "clinic schema rolled back entirely",
	},
}

// Directions lists the accepted migration directions in a stable order.
func Directions() []string {
	directions := make([]string, 0, len(migrationSteps))
	for direction := range migrationSteps {
		directions = append(directions, direction)
	}

	slices.Sort(directions)

	return directions
}

// MigrationDSN builds the URL golang-migrate opens against the write database.
// Credentials are escaped, so passwords may carry URL delimiters.
func MigrationDSN(cfg *config.Config) string {
	write := cfg.DB.Postgres.Write

	query := url.Values{}
	query.Set("sslmode", write.SSLMode)
	query.Set("x-migrations-table", cfg.DB.Postgres.MigrationTable)

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(write.Username, write.Password),
		Host:     net.JoinHostPort(write.Host, write.Port),
		Path:     "/" + cfg.DB.Postgres.Prefix + write.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// Migrate applies one direction to the clinic schema and logs the version it lands on.
// Having nothing to apply is not an error.
func Migrate(cfg *config.Config, direction string) error {
	step, ok := migrationSteps[direction]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}

	mig, err := migrate.New(migrationSource, MigrationDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to open clinic migrations: %w", err)
	}

	defer mig.Close()

	if err = step.apply(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate clinic schema %s: %w", direction, err)
	}

	unchanged := errors.Is(err, migrate.ErrNoChange)

	version, dirty, err := mig.Version()

	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Str("direction", direction).Bool("unchanged", unchanged).Msg(step.done + ", no version applied")
	case err != nil:
		log.Warn().Err(err).Str("direction", direction).Msg("failed to read clinic schema version")
	default:
		log.Info().
			Str("direction", direction).
			Uint("version", version).
			Bool("dirty", dirty).
			Bool("unchanged", unchanged).
			Msg(step.done)
	}

	return nil
}
