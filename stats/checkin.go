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

// Package stats keeps the latest check-in of every device for every app.
package stats

import (
	"strings"
	"time"

	"shanhu.io/appdist/distapi"
)

// TimeFormat is the format of check-in timestamps.
const TimeFormat = "01/02/2006 15:04:05"

const fieldSep = ";;"

// CheckIn is the latest check-in of a device for an app.
type CheckIn struct {
	Device     string
	Platform   string
	OSVersion  string
	AppVersion string
	LastCheck  string
	Language   string
}

// NewCheckIn creates the check-in of a request.
func NewCheckIn(req distapi.Request, now time.Time) *CheckIn {
	return &CheckIn{
		Device:     req.Device,
		Platform:   req.Platform,
		OSVersion:  req.OSVersion,
		AppVersion: req.AppVersion,
		LastCheck:  now.UTC().Format(TimeFormat),
		Language:   req.Language,
	}
}

var fieldCleaner = strings.NewReplacer("\r", "", "\n", "", fieldSep, ";")

func cleanField(s string) string {
	// A field ending with ';' would merge into the separator.
	return strings.TrimRight(fieldCleaner.Replace(s), ";")
}

// clean returns a copy with every field safe to store on one line.
func (c *CheckIn) clean() *CheckIn {
	return &CheckIn{
		Device:     cleanField(c.Device),
		Platform:   cleanField(c.Platform),
		OSVersion:  cleanField(c.OSVersion),
		AppVersion: cleanField(c.AppVersion),
		LastCheck:  cleanField(c.LastCheck),
		Language:   cleanField(c.Language),
	}
}

func (c *CheckIn) line() string {
	return strings.Join([]string{
		c.Device, c.Platform, c.OSVersion,
		c.AppVersion, c.LastCheck, c.Language,
	}, fieldSep)
}

// parseLine parses one stats line. Lines written before the language
// field was added have five fields.
func parseLine(line string) (*CheckIn, bool) {
	fields := strings.Split(line, fieldSep)
	switch len(fields) {
	case 5:
		fields = append(fields, "")
	case 6:
	default:
		return nil, false
	}
	return &CheckIn{
		Device:     fields[0],
		Platform:   fields[1],
		OSVersion:  fields[2],
		AppVersion: fields[3],
		LastCheck:  fields[4],
		Language:   fields[5],
	}, true
}

// lineDevice returns the device identity of a stats line.
func lineDevice(line string) string {
	if i := strings.Index(line, fieldSep); i >= 0 {
		return line[:i]
	}
	return line
}

// Parse parses the content of a stats file. Blank lines are skipped;
// malformed lines are skipped and counted.
func Parse(bs []byte) ([]*CheckIn, int) {
	var list []*CheckIn
	bad := 0
	for _, line := range strings.Split(string(bs), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		c, ok := parseLine(line)
		if !ok {
			bad++
			continue
		}
		list = append(list, c)
	}
	return list, bad
}

// Merge upserts a check-in into the content of a stats file. The first
// line of the same device is replaced in place and later ones are
// dropped; when there is none, the check-in is appended. Other lines, malformed ones included, are kept
// as they are. Blank lines are dropped.
func Merge(bs []byte, c *CheckIn) []byte {
	c = c.clean()
	b := new(strings.Builder)
	found := false
	for _, line := range strings.Split(string(bs), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if lineDevice(line) == c.Device {
			if found {
				continue // Stale duplicate.
			}
			line = c.line()
			found = true
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if !found {
		b.WriteString(c.line())
		b.WriteString("\n")
	}
	return []byte(b.String())
}
