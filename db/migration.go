// Package db embeds the database schema migrations.
package db

import "embed"

// MigrationDir is the directory inside Migrations holding the migration files.
const MigrationDir = "migration"

// Migrations holds the golang-migrate migration files.
//
//go:embed migration/*.sql
var Migrations embed.FS
