//go:build tools

// Package tools pins the versions of the binaries used for generating code, running the database
// migrations and linting: sqlc generates internal/postgresql/db from internal/postgresql/db/query,
// tern applies internal/postgresql/db/migrations.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "github.com/jackc/tern/v2"
	_ "github.com/sqlc-dev/sqlc/cmd/sqlc"
)
