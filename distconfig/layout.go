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

package distconfig

import (
	"path/filepath"
)

// Names in the app tree.
const (
	StatsDirName = "stats"
	UserListName = "userlist.txt"
	PrivateName  = "private"
)

// StatsDir returns the directory that keeps per-app stats files and the
// user list.
func StatsDir(appsDir string) string {
	return filepath.Join(appsDir, StatsDirName)
}

// UserListFile returns the path of the user directory file.
func UserListFile(appsDir string) string {
	return filepath.Join(StatsDir(appsDir), UserListName)
}
