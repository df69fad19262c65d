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

// Package listing builds the public app listing: one summary record per
// app with the sorted device statistics of that app.
package listing

import (
	"log"
	"os"
	"path/filepath"

	"shanhu.io/appdist/access"
	"shanhu.io/appdist/appdir"
	"shanhu.io/appdist/appmeta"
	"shanhu.io/appdist/distapi"
	"shanhu.io/appdist/stats"
	"shanhu.io/misc/errcode"
)

// Lister lists apps of an apps tree.
type Lister struct {
	tree   *appdir.Tree
	access *access.Resolver
	stats  stats.Store
}

// NewLister creates a lister.
func NewLister(
	tree *appdir.Tree, res *access.Resolver, store stats.Store,
) *Lister {
	return &Lister{tree: tree, access: res, stats: store}
}

// List lists the apps. When id is empty, all non-private apps are
// listed; otherwise only the app with the given bundle identifier is,
// private or not. Apps with nothing to show are left out, and so are
// apps whose files cannot be read when listing all of them.
func (l *Lister) List(id, lang string) ([]*distapi.App, error) {
	users, err := l.access.Users()
	if err != nil {
		return nil, errcode.Annotate(err, "load user directory")
	}

	if id != "" {
		app, err := l.app(id, lang, users)
		if err != nil {
			if errcode.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if app == nil {
			return nil, nil
		}
		return []*distapi.App{app}, nil
	}

	ids, err := l.tree.Apps()
	if err != nil {
		return nil, err
	}
	var apps []*distapi.App
	for _, id := range ids {
		private, err := l.tree.IsPrivate(id)
		if err != nil {
			return nil, errcode.Annotatef(err, "check private of %q", id)
		}
		if private {
			continue
		}
		app, err := l.app(id, lang, users)
		if err != nil {
			// One broken app does not hide the others.
			if !errcode.IsNotFound(err) { // NotFound: removed while listing.
				log.Printf("list app %q: %s", id, err)
			}
			continue
		}
		if app != nil {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

// App returns the listing record of a single app. It returns a not
// found error when the app has no version to show.
func (l *Lister) App(id, lang string) (*distapi.App, error) {
	users, err := l.access.Users()
	if err != nil {
		return nil, errcode.Annotate(err, "load user directory")
	}
	app, err := l.app(id, lang, users)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, errcode.NotFoundf("app %q has no public version", id)
	}
	return app, nil
}

func (l *Lister) app(id, lang string, users *access.UserDirectory) (
	*distapi.App, error,
) {
	versions, err := l.tree.Versions(id, lang)
	if err != nil {
		return nil, err
	}
	v, err := appdir.ForDisplay(versions)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	meta, err := appmeta.Read(v.Files)
	if err != nil {
		return nil, errcode.Annotatef(err, "read metadata of %q", id)
	}
	notes, err := appmeta.ReadNotes(v.Files.Notes())
	if err != nil {
		return nil, errcode.Annotatef(err, "read notes of %q", id)
	}
	info, err := os.Stat(v.Files.Installer())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.NotFoundf("installer of %q removed", id)
		}
		return nil, errcode.Annotate(err, "stat installer")
	}

	app := &distapi.App{
		Dir:      id,
		Title:    meta.Title,
		Subtitle: meta.Subtitle,
		Version:  meta.Version,
		Platform: v.Files.Platform(),
		Date:     info.ModTime().Unix(),
		AppSize:  info.Size(),
		Notes:    appmeta.RenderNotes(notes),
		Stats:    []*distapi.Device{},
	}

	files, err := l.tree.AppFiles(id)
	if err != nil {
		return nil, err
	}
	if files.Icon != "" {
		rel, err := filepath.Rel(l.tree.Root(), files.Icon)
		if err != nil {
			return nil, errcode.Annotate(err, "icon path")
		}
		app.Image = filepath.ToSlash(rel)
	}
	if _, ok := v.Files.(*appdir.IOSFiles); ok && files.Profile != "" {
		if info, err := os.Stat(files.Profile); err == nil {
			app.Profile = filepath.Base(files.Profile)
			app.ProfileUpdate = info.ModTime().Unix()
		} else if !os.IsNotExist(err) {
			return nil, errcode.Annotate(err, "stat profile")
		}
	}

	checkIns, err := l.stats.List(id)
	if err != nil {
		// Statistics are not essential for the listing.
		log.Printf("list stats of %q: %s", id, err)
		return app, nil
	}
	stats.Sort(checkIns)
	for _, c := range checkIns {
		app.Stats = append(app.Stats, deviceRow(c, users))
	}
	return app, nil
}

func deviceRow(c *stats.CheckIn, users *access.UserDirectory) *distapi.Device {
	return &distapi.Device{
		User:       users.Name(c.Device),
		Platform:   stats.PlatformName(c.Platform),
		OSVersion:  c.OSVersion,
		AppVersion: c.AppVersion,
		LastCheck:  c.LastCheck,
		Language:   c.Language,
	}
}
