// Package db embeds the SQL schema for the PostgreSQL backend.
package db

import _ "embed"

// Schema creates the products and orders tables. Every statement is idempotent.
//
//go:embed migrations/001_schema.sql
var Schema string
