// Package storage provides the object store used for episode artifacts.
//
// Two backends implement Store: S3 (AWS SDK v2) for production and a
// filesystem tree for local runs and tests. Both report missing buckets and
// objects with ErrNotFound and lost create races with ErrBucketExists so
// callers can classify outcomes without knowing the backend.
package storage
