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

package appmeta

import (
	"io/ioutil"
	"strings"

	"shanhu.io/misc/errcode"
)

// ReadNotes reads a release notes file. An empty path gives empty notes.
func ReadNotes(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	bs, err := ioutil.ReadFile(f)
	if err != nil {
		return "", errcode.Annotate(err, "read notes")
	}
	return string(bs), nil
}

// RenderNotes turns plain line breaks into HTML breaks. Carriage returns
// are dropped, and a newline right after a tag is left alone.
func RenderNotes(s string) string {
	s = strings.Replace(s, "\r", "", -1)
	b := new(strings.Builder)
	for i, r := range s {
		if r == '\n' && (i == 0 || s[i-1] != '>') {
			b.WriteString("<br />")
		}
		b.WriteRune(r)
	}
	return b.String()
}
