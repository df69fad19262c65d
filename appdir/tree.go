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
	"path/filepath"
	"sort"
	"strings"

	"shanhu.io/appdist/distconfig"
	"shanhu.io/appdist/semver"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
)

// ValidateBundleID checks that a bundle identifier is safe to use as a
// directory name under the apps root.
func ValidateBundleID(id string) error {
	if id == "" || id == "." {
		return errcode.InvalidArgf("bundle identifier empty")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return errcode.InvalidArgf("invalid bundle identifier %q", id)
	}
	return nil
}

// Tree is an apps root directory. Each app is a subdirectory named by
// its bundle identifier; the "stats" subdirectory keeps statistics.
type Tree struct {
	root  string
	order semver.Order
}

// NewTree creates a tree on the given root. A nil order orders version
// directories lexically.
func NewTree(root string, order semver.Order) *Tree {
	if order == nil {
		order = semver.Lexical
	}
	return &Tree{root: root, order: order}
}

// Root returns the root directory.
func (t *Tree) Root() string { return t.root }

// StatsDir returns the statistics directory.
func (t *Tree) StatsDir() string { return distconfig.StatsDir(t.root) }

// UserListFile returns the user directory file.
func (t *Tree) UserListFile() string { return distconfig.UserListFile(t.root) }

// AppDir returns the directory of an app. The identifier is validated,
// and the directory must exist.
func (t *Tree) AppDir(id string) (string, error) {
	if err := ValidateBundleID(id); err != nil {
		return "", err
	}
	if id == distconfig.StatsDirName {
		return "", errcode.NotFoundf("app %q not found", id)
	}
	dir := filepath.Join(t.root, id)
	ok, err := osutil.IsDir(dir)
	if err != nil {
		return "", errcode.Annotate(err, "check app directory")
	}
	if !ok {
		return "", errcode.NotFoundf("app %q not found", id)
	}
	return dir, nil
}

// Apps lists the bundle identifiers of all app directories, sorted.
func (t *Tree) Apps() ([]string, error) {
	names, err := subDirs(t.root)
	if err != nil {
		return nil, errcode.Annotate(err, "list apps")
	}
	var apps []string
	for _, name := range names {
		if name == distconfig.StatsDirName || strings.HasPrefix(name, ".") {
			continue
		}
		apps = append(apps, name)
	}
	sort.Strings(apps)
	return apps, nil
}

// IsPrivate returns true when the app is hidden from the listing.
func (t *Tree) IsPrivate(id string) (bool, error) {
	dir, err := t.AppDir(id)
	if err != nil {
		return false, err
	}
	return osutil.Exist(filepath.Join(dir, distconfig.PrivateName))
}

// Versions enumerates the complete versions of an app, newest first.
func (t *Tree) Versions(id, lang string) ([]*Version, error) {
	dir, err := t.AppDir(id)
	if err != nil {
		return nil, err
	}
	return Enumerate(dir, id, lang, t.order)
}

// AppFiles finds the app-level files of an app.
func (t *Tree) AppFiles(id string) (*AppFiles, error) {
	dir, err := t.AppDir(id)
	if err != nil {
		return nil, err
	}
	return LocateApp(dir)
}
