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
	"shanhu.io/misc/errcode"
)

// Allowed decides whether a device passes a restriction. A nil
// restriction allows everyone; a restriction never allows an anonymous
// device.
func Allowed(r *Restriction, device string, users *UserDirectory) bool {
	if r == nil {
		return true
	}
	if device == "" {
		return false
	}
	return users.Teams(device).Intersects(r.Teams)
}

// Resolver checks restriction files against the user directory file.
// It reads both files on every check, and is safe to use from multiple
// goroutines.
type Resolver struct {
	userList string
}

// NewResolver creates a resolver that reads users from the given user
// list file.
func NewResolver(userList string) *Resolver {
	return &Resolver{userList: userList}
}

// IsAllowed decides whether the device may access the version guarded
// by the restriction file. An empty path means the version has no
// restriction file.
func (r *Resolver) IsAllowed(restriction, device string) (bool, error) {
	res, err := ReadRestriction(restriction)
	if err != nil {
		return false, err
	}
	if res == nil || device == "" {
		return res == nil, nil
	}
	users, err := ReadUserDirectory(r.userList)
	if err != nil {
		return false, errcode.Annotate(err, "load user directory")
	}
	return Allowed(res, device, users), nil
}

// Users loads the user directory.
func (r *Resolver) Users() (*UserDirectory, error) {
	return ReadUserDirectory(r.userList)
}
