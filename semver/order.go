// Copyright (C) 2023  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package semver provides orderings of version directory names.
package semver

import (
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
)

// Order compares two version labels. It returns a negative number when
// a is older than b, zero when they are the same, and a positive number
// when a is newer.
type Order func(a, b string) int

// Lexical compares version labels as plain strings. "1.10" sorts before
// "1.9" under this order.
func Lexical(a, b string) int { return strings.Compare(a, b) }

// Semantic compares version labels as semantic versions. Labels that do
// not parse are older than any label that does, and compare lexically
// among themselves.
func Semantic(a, b string) int {
	va, errA := mmsemver.NewVersion(a)
	vb, errB := mmsemver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return Lexical(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	if c := va.Compare(vb); c != 0 {
		return c
	}
	// "1.0" and "1.0.0" are equal versions; keep the order total.
	return Lexical(a, b)
}

// ByName returns the order with the given name: "semver" for Semantic,
// anything else for Lexical.
func ByName(name string) Order {
	if name == "semver" {
		return Semantic
	}
	return Lexical
}
