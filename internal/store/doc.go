// Package store defines interfaces for data persistence operations.
// Services depend on these interfaces so business rules stay independent
// of the database that backs them. Postgres implementations live in
// internal/platform/postgres.
package store
