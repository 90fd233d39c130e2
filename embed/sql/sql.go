package sql

import _ "embed"

// Schema creates the tables of the task database.
//
//go:embed schema.sql
var Schema string
