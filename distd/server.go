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

package distd

import (
	"path/filepath"

	"shanhu.io/appdist/access"
	"shanhu.io/appdist/appdir"
	"shanhu.io/appdist/delivery"
	"shanhu.io/appdist/distconfig"
	"shanhu.io/appdist/listing"
	"shanhu.io/appdist/livefeed"
	"shanhu.io/appdist/semver"
	"shanhu.io/appdist/stats"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
)

type server struct {
	config *distconfig.Config

	tree   *appdir.Tree
	access *access.Resolver
	stats  stats.Store

	engine *delivery.Engine
	lister *listing.Lister
	live   *livefeed.Hub
}

func appsDir(h *osutil.Home, c *distconfig.Config) string {
	if c.AppsDir == "" {
		return h.FilePath("apps")
	}
	if filepath.IsAbs(c.AppsDir) {
		return c.AppsDir
	}
	return h.FilePath(c.AppsDir)
}

func newServer(h *osutil.Home, c *distconfig.Config) (*server, error) {
	root := appsDir(h, c)
	ok, err := osutil.IsDir(root)
	if err != nil {
		return nil, errcode.Annotate(err, "check apps dir")
	}
	if !ok {
		return nil, errcode.NotFoundf("apps dir %q not found", root)
	}

	tree := appdir.NewTree(root, semver.ByName(c.VersionOrder))
	store, err := newStatsStore(c, tree.StatsDir())
	if err != nil {
		return nil, errcode.Annotate(err, "open stats")
	}
	return newServerWithStore(c, tree, store), nil
}

func newServerWithStore(
	c *distconfig.Config, tree *appdir.Tree, store stats.Store,
) *server {
	res := access.NewResolver(tree.UserListFile())
	s := &server{
		config: c,
		tree:   tree,
		access: res,
		stats:  store,
		lister: listing.NewLister(tree, res, store),
	}

	engineConfig := &delivery.Config{
		Tree:       tree,
		Access:     res,
		Stats:      store,
		AuthSecret: c.AuthSecret,
	}
	if c.LiveFeed {
		s.live = livefeed.NewHub()
		engineConfig.Notifier = s.live
	}
	s.engine = delivery.NewEngine(engineConfig)
	return s
}
