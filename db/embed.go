// Package db embeds the SQL schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for the orders and menu board tables.
//
//go:embed migrations/001_schema.sql
var Schema string
