// Package store defines the persistence interfaces for cards and folders,
// the store error vocabulary, and the transaction helpers shared by every
// implementation. Concrete implementations live under internal/platform.
package store
