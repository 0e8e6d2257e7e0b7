// Package repository provides a generic soft-delete repository built on Bun,
// and the user and profile repositories composed from it. Repositories are
// bound to a bun.IDB, which is either a *bun.DB or a unit-of-work session.
package repository
