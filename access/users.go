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

package access

import (
	"io/ioutil"
	"os"
	"strings"

	"shanhu.io/misc/errcode"
)

type userLine struct {
	fields []string
}

// UserDirectory maps device identities to display names and team
// memberships. It is loaded from lines of "id;name;team1,team2". When
// several lines have the same id, the first one wins.
type UserDirectory struct {
	lines []*userLine
}

// ParseUserDirectory parses the content of a user list file.
func ParseUserDirectory(bs []byte) *UserDirectory {
	d := new(UserDirectory)
	for _, line := range strings.Split(string(bs), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		d.lines = append(d.lines, &userLine{
			fields: strings.Split(line, ";"),
		})
	}
	return d
}

// ReadUserDirectory reads a user list file. A missing file gives an
// empty directory.
func ReadUserDirectory(f string) (*UserDirectory, error) {
	bs, err := ioutil.ReadFile(f)
	if err != nil {
		if os.IsNotExist(err) {
			return new(UserDirectory), nil
		}
		return nil, errcode.Annotate(err, "read user list")
	}
	return ParseUserDirectory(bs), nil
}

// Name returns the display name of a device. It returns the identity
// itself when the device is not listed.
func (d *UserDirectory) Name(id string) string {
	for _, line := range d.lines {
		if len(line.fields) >= 2 && line.fields[0] == id {
			return line.fields[1]
		}
	}
	return id
}

// Teams returns the teams of a device. Only lines with exactly the three
// fields count. Unknown devices belong to no team.
func (d *UserDirectory) Teams(id string) Teams {
	for _, line := range d.lines {
		if len(line.fields) == 3 && line.fields[0] == id {
			return ParseTeams(line.fields[2])
		}
	}
	return Teams{}
}
