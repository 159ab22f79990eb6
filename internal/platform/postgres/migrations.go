package postgres

import "embed"

// MigrationsFS holds the goose SQL migrations for the schema. Files live in
// the "migrations" directory of the embedded filesystem.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// MigrationsDir is the directory within MigrationsFS that goose reads from.
const MigrationsDir = "migrations"

// MigrationsTable is the goose version table name.
const MigrationsTable = "schema_migrations"
