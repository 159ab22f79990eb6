// Package api handles incoming HTTP requests, request validation and
// response formatting. Handlers translate HTTP concerns into calls on the
// card, folder, stats, practice and review session services and map their
// errors onto status codes.
package api
