// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests using it are guarded by the "integration" build tag and skip when
// LAUNDRY_TEST_DATABASE_URL is unset:
//
//	LAUNDRY_TEST_DATABASE_URL=postgres://... go test -tags=integration ./...
//
// Open applies the embedded migrations once per process. WithTx runs a test
// inside a transaction that is always rolled back, so tests can share one
// database and run in parallel.
package testdb
