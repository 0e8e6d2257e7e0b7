// Package database provides connection management, versioned table bootstrap,
// foreign keys, SQL error classification, query hooks, logging and metrics
// on top of Bun.
package database
