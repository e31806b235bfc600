// Package token implements authentication token generators for cloud-hosted
// PostgreSQL and the single-flight cache that serves them.
//
// # Generators
//
// Each generator mints a short-lived token accepted by its platform in place
// of a password:
//   - RDSGenerator: AWS RDS/Aurora IAM tokens (SigV4 presigned, built locally)
//   - AzureGenerator: Microsoft Entra ID tokens for Azure Database for PostgreSQL
//   - GoogleGenerator: OAuth access tokens for Cloud SQL IAM database login
//   - StaticGenerator: a fixed token, for tests and local development
//
// Generators are stateless: they neither cache nor retry. Wrap one in a
// Cache to get reuse and concurrency control.
//
// # Cache
//
// Cache bounds token issuance under concurrent connection demand: a fresh
// token is served from memory, and a miss triggers exactly one generation
// per identity no matter how many callers are waiting. Failed generations
// are shared with the waiters of that attempt and never cached.
package token
