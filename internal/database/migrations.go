package database

import "embed"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsDir is the directory inside the embedded FS holding the SQL files.
const MigrationsDir = "migrations"
