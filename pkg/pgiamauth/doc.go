// Package pgiamauth defines the public contracts for IAM-authenticated
// PostgreSQL connections: the connection provider interface consumed by a
// driver-level registry, the token generator capability it is built on, and
// the typed errors callers use to tell misconfiguration apart from identity
// service failures and database failures.
//
// Implementations live under internal/ and are wired together by the
// pgiamauth CLI; library consumers embed the interfaces defined here.
//
// Tokens returned by a TokenGenerator are capabilities, not stored secrets:
// nothing in this module persists or logs them.
package pgiamauth
