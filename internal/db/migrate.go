package db

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"boost-engine/db/migrations"
)

// ErrDirtySchema means a previous migration failed halfway and needs manual
// repair before the engine can start.
var ErrDirtySchema = errors.New("schema is dirty")

// SchemaChange reports the schema version before and after Migrate. From is
// zero on an empty database.
type SchemaChange struct {
	From, To uint
}

// Applied reports whether Migrate changed the schema.
func (c SchemaChange) Applied() bool { return c.From != c.To }

// Migrate brings the campaign and usage schema at addr to
// migrations.Version.
func Migrate(addr string) (SchemaChange, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return SchemaChange{}, fmt.Errorf("open embedded migrations: %w", err)
	}
	defer source.Close()

	mg, err := migrate.NewWithSourceInstance("iofs", source, addr)
	if err != nil {
		return SchemaChange{}, fmt.Errorf("connect migrator: %w", err)
	}
	defer mg.Close()

	from, dirty, err := mg.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return SchemaChange{}, fmt.Errorf("read schema version: %w", err)
	case dirty:
		return SchemaChange{From: from, To: from}, fmt.Errorf("%w at version %d", ErrDirtySchema, from)
	}

	change := SchemaChange{From: from, To: migrations.Version}
	if err = mg.Migrate(migrations.Version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return change, nil
		}
		return SchemaChange{From: from, To: from}, fmt.Errorf("migrate %d -> %d: %w", from, migrations.Version, err)
	}
	return change, nil
}
