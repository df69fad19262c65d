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
	"shanhu.io/misc/errcode"
)

// Store keeps check-ins keyed by app and device identity.
type Store interface {
	// Put upserts the check-in of c.Device. An existing record keeps
	// its position in List.
	Put(app string, c *CheckIn) error

	// Get returns the check-in of a device. It returns a not-found
	// error when the device never checked in.
	Get(app, device string) (*CheckIn, error)

	// List returns all check-ins of an app, in first check-in order.
	List(app string) ([]*CheckIn, error)
}

func findDevice(list []*CheckIn, app, device string) (*CheckIn, error) {
	for _, c := range list {
		if c.Device == device {
			return c, nil
		}
	}
	return nil, errcode.NotFoundf("device %q not found in %q", device, app)
}
