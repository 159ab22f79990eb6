// Package srs implements the review scheduler: a pure mapping from a card's
// stored mastery level and a review grade to its next level and due date.
//
// The default table is:
//
//	again: level - 1 (floor 0), due in 0.5 days
//	hard:  level + 0.5 (floored, cap 5), due in 1 day
//	good:  level + 1 (cap 5), due in 3 days
//	easy:  level + 2 (cap 5), due in 7 days
package srs
