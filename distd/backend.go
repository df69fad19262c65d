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
	"log"

	"shanhu.io/appdist/distconfig"
	"shanhu.io/appdist/stats"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"
	"shanhu.io/misc/sqlx"
	"shanhu.io/pisces"
)

func openTables(c *distconfig.Config) (*pisces.Tables, error) {
	switch c.StatsBackend() {
	case distconfig.StatsSqlite:
		exist, err := osutil.Exist(c.StatsDB)
		if err != nil {
			return nil, errcode.Annotate(err, "check database file exist")
		}
		if !exist {
			log.Printf("initializing stats database %q", c.StatsDB)
		}
		return pisces.OpenSqlite3Tables(c.StatsDB)
	case distconfig.StatsPsql:
		db, err := sqlx.OpenPsql(c.StatsDB)
		if err != nil {
			return nil, errcode.Annotate(err, "open postgres")
		}
		return pisces.NewTables(db), nil
	}
	return nil, errcode.InvalidArgf("no tables for backend %q", c.Stats)
}

// newStatsStore opens the stats store selected by the config. The flat
// file store keeps its files in statsDir.
func newStatsStore(c *distconfig.Config, statsDir string) (
	stats.Store, error,
) {
	if c.StatsBackend() == distconfig.StatsFile {
		return stats.NewFileStore(statsDir)
	}

	tables, err := openTables(c)
	if err != nil {
		return nil, err
	}
	store := stats.NewKVStore(tables)
	if err := tables.CreateMissing(); err != nil {
		return nil, errcode.Annotate(err, "create stats tables")
	}
	return store, nil
}
