// Package db embeds the database schema migrations.
package db

import "embed"

// Migrations holds the sql migrations applied by dbpkg.Migrate.
//
//go:embed migration/*.sql
var Migrations embed.FS
