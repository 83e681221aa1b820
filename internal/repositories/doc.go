// Package repositories provides the persistence layer for the local artifact
// cache.
//
// The cache is a read-only mirror of the remote collection: sync runs replace
// rows wholesale and soft-delete rows that disappeared remotely. Nothing in
// the client mutates cached artifacts directly; the remote store of record
// owns the data.
package repositories
