// Package domain contains the core vocabulary entities (cards, folders,
// review grades and results) and their validation rules. It is independent of
// storage, transport and the language-model integration.
package domain
