// Package generation defines the boundary between the application and the
// external language model used to enrich vocabulary cards and to write short
// practice dialogues. Implementations live under internal/platform.
package generation
