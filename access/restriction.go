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

// Package access decides whether a device may access a restricted app
// version, based on team memberships.
package access

import (
	"io/ioutil"
	"os"
	"strings"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/strutil"
)

// Teams is a set of team names.
type Teams map[string]bool

// ParseTeams parses a comma separated team list. Names are trimmed and
// empty names are dropped.
func ParseTeams(s string) Teams {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return Teams(strutil.MakeSet(names))
}

// Intersects returns true when the two sets share at least one team.
func (t Teams) Intersects(other Teams) bool {
	for name := range t {
		if other[name] {
			return true
		}
	}
	return false
}

// List returns the team names in sorted order.
func (t Teams) List() []string {
	return strutil.SortedList(map[string]bool(t))
}

// Restriction limits a version to the devices of a set of teams. A
// restriction with an empty team set admits nobody.
type Restriction struct {
	Teams Teams
}

// ReadRestriction reads a restriction file. It returns nil with no
// error when there is no restriction: the path is empty, the file does
// not exist, or the file is empty. Other read failures are errors, so
// that "no restriction" is never confused with "could not check".
func ReadRestriction(f string) (*Restriction, error) {
	if f == "" {
		return nil, nil
	}
	bs, err := ioutil.ReadFile(f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errcode.Annotate(err, "read restriction file")
	}
	if len(bs) == 0 {
		return nil, nil
	}
	return &Restriction{Teams: ParseTeams(string(bs))}, nil
}

// IsRestricted returns true when the restriction file exists and has
// content.
func IsRestricted(f string) (bool, error) {
	r, err := ReadRestriction(f)
	if err != nil {
		return false, err
	}
	return r != nil, nil
}
