// Package models defines domain entities for the relic artifact tracker client.
//
// The package contains two categories of types:
//
// 1. Remote DTOs: shapes exchanged with the artifact API and identity provider
//   - [Artifact] : An artifact record as the remote store of record holds it
//   - [ArtifactDraft] : The unsent form of an artifact during create/update
//   - [Contributor] : The addedBy stamp identifying the owning subject
//   - [Identity] : The authenticated subject reported by the identity provider
//
// 2. Cache entities: rows in the local sqlite mirror of the remote collection
//   - [CachedArtifact] : A synced artifact with local bookkeeping timestamps
//
// The client never holds more than a cache copy of any artifact; the remote
// store of record owns the data.
package models
