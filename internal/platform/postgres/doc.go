// Package postgres provides PostgreSQL implementations of the store
// interfaces. All stores accept a store.DBTX so they can run against a
// live connection pool or inside a caller-managed transaction.
package postgres
