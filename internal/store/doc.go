// Package store defines the persistence interfaces for the application's
// entities, the DBTX abstraction over connections and transactions, the
// transaction helper, and the sentinel errors shared by all store
// implementations. Concrete implementations live in platform packages
// (see internal/platform/postgres).
package store
