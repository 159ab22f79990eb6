// Package service contains the application use cases of the vocabulary
// trainer. It orchestrates the domain types, the stores defined in
// internal/store and the generation port to fulfil the features exposed by
// the HTTP API.
//
// Operations that touch more than one row or table run through a
// store.Transactor so that they are atomic. Errors from lower layers are
// wrapped in ServiceError, which keeps the sentinel errors of the store,
// domain and generation packages reachable through errors.Is.
//
// The review session manager lives in the review_session subpackage and
// single-owner token handling in the auth subpackage.
package service
