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

package appdir

import (
	"shanhu.io/appdist/access"
	"shanhu.io/misc/errcode"
)

// ForDelivery picks the version to deliver: the newest one, restricted
// or not. Access must be checked separately against the caller.
func ForDelivery(versions []*Version) *Version {
	if len(versions) == 0 {
		return nil
	}
	return versions[0]
}

// ForDisplay picks the version to show in the public listing: the
// newest one that is not a restricted iOS version. Android versions are
// never skipped for restrictions. It returns nil when every version is
// skipped.
func ForDisplay(versions []*Version) (*Version, error) {
	for _, v := range versions {
		if ios, ok := v.Files.(*IOSFiles); ok {
			restricted, err := access.IsRestricted(ios.RestrictionFile)
			if err != nil {
				return nil, errcode.Annotatef(
					err, "check restriction of version %q", v.Label,
				)
			}
			if restricted {
				continue
			}
		}
		return v, nil
	}
	return nil, nil
}
