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

package stats

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

var platformNames = map[string]string{
	"i386":      "iPhone Simulator",
	"iPhone1,1": "iPhone",
	"iPhone1,2": "iPhone 3G",
	"iPhone2,1": "iPhone 3GS",
	"iPhone3,1": "iPhone 4",
	"iPad1,1":   "iPad",
	"iPod1,1":   "iPod Touch",
	"iPod2,1":   "iPod Touch 2nd Gen",
	"iPod3,1":   "iPod Touch 3rd Gen",
	"iPod4,1":   "iPod Touch 4th Gen",
}

// PlatformName maps a hardware platform code to a readable name. Unknown
// codes are returned as they are.
func PlatformName(code string) string {
	if name, ok := platformNames[code]; ok {
		return name
	}
	return code
}

// laterCheck returns true when check time a sorts before b in
// descending order. Timestamps that parse come before those that do
// not, which are compared as strings.
func laterCheck(a, b string) bool {
	ta, errA := time.Parse(TimeFormat, a)
	tb, errB := time.Parse(TimeFormat, b)
	switch {
	case errA == nil && errB == nil:
		return ta.After(tb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a > b
}

// compareValues compares two fields as numbers when both are numeric,
// and as strings otherwise.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func displayLess(a, b *CheckIn) bool {
	if c := compareValues(a.AppVersion, b.AppVersion); c != 0 {
		return c > 0
	}
	if c := compareValues(a.OSVersion, b.OSVersion); c != 0 {
		return c > 0
	}
	pa, pb := PlatformName(a.Platform), PlatformName(b.Platform)
	if pa != pb {
		return pa < pb
	}
	return laterCheck(a.LastCheck, b.LastCheck)
}

// Sort sorts check-ins for display: app version descending, then OS
// version descending, then platform name ascending, then last check
// time descending. Ties keep their input order.
func Sort(list []*CheckIn) {
	sort.SliceStable(list, func(i, j int) bool {
		return displayLess(list[i], list[j])
	})
}
