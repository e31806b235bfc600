// Package db implements the PostgreSQL connection provider: JDBC-style
// URL parsing, the provider that exchanges a cached IAM token for a live
// connection, the provider registry, and pgxpool glue that re-injects a
// fresh token for every physical connection a pool opens.
//
// The package depends on internal/token for token acquisition and on
// pkg/pgiamauth for the public contracts. Nothing in this package stores
// or logs token values.
package db
