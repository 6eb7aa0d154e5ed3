package repository

import (
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate into sentinel errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// psql builds statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgForeignKeyViolation
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}
