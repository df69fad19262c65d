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
	"os"

	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonx"
)

// Stats backends.
const (
	StatsFile   = "file"
	StatsSqlite = "sqlite"
	StatsPsql   = "psql"
)

// Version orders.
const (
	OrderLexical = "lexical"
	OrderSemver  = "semver"
)

// Config is the configuration of an app distribution server.
type Config struct {
	// Root of the app tree. Default: "apps" under the home directory.
	AppsDir string `json:",omitempty"`

	// Stats backend, one of "file", "sqlite" or "psql". Default: "file",
	// which keeps the flat files under <AppsDir>/stats.
	Stats string `json:",omitempty"`

	// Sqlite database file or postgres connection URL for the stats
	// backend.
	StatsDB string `json:",omitempty"`

	// How version directories are ordered: "lexical" (default) or
	// "semver".
	VersionOrder string `json:",omitempty"`

	// Secret for generating auth codes in the authorize flow. When
	// empty, every authorize request fails.
	AuthSecret string `json:",omitempty"`

	// Instance name for mDNS advertisement. Empty disables it.
	Advertise string `json:",omitempty"`

	// Domains for automatic TLS certificates. When empty, serves plain
	// HTTP.
	AutoCertDomains []string `json:",omitempty"`

	// Certificate cache directory. Default: "var/autocert".
	AutoCertCache string `json:",omitempty"`

	// Broadcast check-ins on a websocket.
	LiveFeed bool `json:",omitempty"`
}

// Read reads the config from a jsonx file. A missing file gives an empty
// config.
func Read(f string) (*Config, error) {
	c := new(Config)
	if err := jsonx.ReadFile(f, c); err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errcode.Annotate(err, "read config")
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) check() error {
	switch c.Stats {
	case "", StatsFile:
	case StatsSqlite, StatsPsql:
		if c.StatsDB == "" {
			return errcode.InvalidArgf("stats backend %q needs StatsDB", c.Stats)
		}
	default:
		return errcode.InvalidArgf("unknown stats backend %q", c.Stats)
	}

	switch c.VersionOrder {
	case "", OrderLexical, OrderSemver:
	default:
		return errcode.InvalidArgf("unknown version order %q", c.VersionOrder)
	}
	return nil
}

// StatsBackend returns the stats backend, with the default filled in.
func (c *Config) StatsBackend() string {
	if c.Stats == "" {
		return StatsFile
	}
	return c.Stats
}
