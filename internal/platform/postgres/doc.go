// Package postgres implements the card and folder stores on PostgreSQL
// through database/sql and the pgx driver. It also embeds the goose schema
// migrations and maps PostgreSQL error codes onto store errors.
package postgres
