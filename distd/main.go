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

// Package distd is the app distribution server and its command line
// client.
package distd

import (
	"log"
	"net/http"
	"os"

	"golang.org/x/crypto/acme/autocert"
	"shanhu.io/appdist/distconfig"
	"shanhu.io/aries"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/osutil"

	_ "github.com/lib/pq"  // for postgres
	_ "modernc.org/sqlite" // sqlite db driver
)

const configFile = "etc/appdist.jsonx"

func readConfig(h *osutil.Home) (*distconfig.Config, error) {
	return distconfig.Read(h.FilePath(configFile))
}

func autoCertCache(h *osutil.Home, c *distconfig.Config) (
	autocert.Cache, error,
) {
	dir := c.AutoCertCache
	if dir == "" {
		dir = h.Var("autocert")
	}
	ok, err := osutil.IsDir(dir)
	if err != nil {
		return nil, errcode.Annotate(err, "check cert cache dir")
	}
	if !ok {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, errcode.Annotate(err, "make cert cache dir")
		}
	}
	return autocert.DirCache(dir), nil
}

func serveTLS(addr string, cache autocert.Cache, domains []string, service aries.Service) error {
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      cache,
	}
	server := &http.Server{
		Addr:      addr,
		TLSConfig: m.TLSConfig(),
		Handler:   aries.Serve(service),
	}
	return server.ListenAndServeTLS("", "")
}

func runServer(homeDir, addr string) error {
	h, err := osutil.NewHome(homeDir)
	if err != nil {
		return errcode.Annotate(err, "open home dir")
	}
	config, err := readConfig(h)
	if err != nil {
		return errcode.Annotate(err, "read config")
	}

	s, err := newServer(h, config)
	if err != nil {
		return errcode.Annotate(err, "create server")
	}
	router := makeRouter(s)

	if config.Advertise != "" {
		m, err := advertise(config.Advertise, addr)
		if err != nil {
			return errcode.Annotate(err, "advertise")
		}
		defer m.Shutdown()
	}

	if len(config.AutoCertDomains) > 0 {
		cache, err := autoCertCache(h, config)
		if err != nil {
			return err
		}
		log.Printf("serve https on %s for %q", addr, config.AutoCertDomains)
		if err := serveTLS(
			addr, cache, config.AutoCertDomains, router,
		); err != nil {
			return errcode.Annotate(err, "listen and serve tls")
		}
		return nil
	}

	log.Printf("serve on %s, apps in %s", addr, s.tree.Root())
	if err := aries.ListenAndServe(addr, router); err != nil {
		return errcode.Annotate(err, "listen and serve")
	}
	return nil
}

func cmdServe(args []string) error {
	flags := cmdFlags.New()
	home := flags.String("home", ".", "home dir")
	addr := flags.String("addr", "localhost:3380", "address to listen on")
	flags.ParseArgs(args)

	return runServer(*home, *addr)
}

// Main is the main entrance of the appdist server and client program.
func Main() { commands().Main() }
