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
	"log"
	"os"
	"path/filepath"
	"sort"

	"shanhu.io/appdist/semver"
	"shanhu.io/misc/errcode"
)

// Version is a complete version of an app.
type Version struct {
	// Label is the version directory name. For the flat layout, where
	// the files live directly in the app directory, it is the bundle
	// identifier.
	Label string

	Dir   string
	Flat  bool
	Files FileSet
}

func isDirEntry(dir string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

func subDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if isDirEntry(dir, e) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Enumerate lists the complete versions of an app, newest first under
// the given order. When the app directory itself holds a complete file
// set, that flat version is the only one returned and subdirectories
// are not looked at. Incomplete version directories are skipped. An
// empty result means the app has nothing to deliver.
func Enumerate(
	appDir, bundleID, lang string, order semver.Order,
) ([]*Version, error) {
	if order == nil {
		order = semver.Lexical
	}

	flat, err := locate(appDir, lang)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.NotFoundf("app %q not found", bundleID)
		}
		return nil, errcode.Annotate(err, "list app directory")
	}
	if fs := flat.fileSet(); fs != nil {
		return []*Version{{
			Label: bundleID,
			Dir:   appDir,
			Flat:  true,
			Files: fs,
		}}, nil
	}
	if flat.ambiguous() {
		log.Printf("app %q has both ios and android files at top", bundleID)
	}

	names, err := subDirs(appDir)
	if err != nil {
		return nil, errcode.Annotate(err, "list version directories")
	}
	sort.SliceStable(names, func(i, j int) bool {
		return order(names[i], names[j]) > 0
	})

	var versions []*Version
	for _, name := range names {
		dir := filepath.Join(appDir, name)
		l, err := locate(dir, lang)
		if err != nil {
			if os.IsNotExist(err) {
				continue // Removed while listing.
			}
			return nil, errcode.Annotatef(err, "list version %q", name)
		}
		fs := l.fileSet()
		if fs == nil {
			if l.ambiguous() {
				log.Printf(
					"version %q of %q has both ios and android files",
					name, bundleID,
				)
			}
			continue
		}
		versions = append(versions, &Version{
			Label: name,
			Dir:   dir,
			Files: fs,
		})
	}
	return versions, nil
}
