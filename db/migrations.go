// Package db ships the schema migrations shared by the postgres and sqlite
// stores.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the sql files.
const MigrationsDir = "migrations"
