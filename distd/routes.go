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
	"net/http"
	"strings"

	"shanhu.io/appdist/distapi"
	"shanhu.io/aries"
)

func (s *server) f(f func(s *server, c *aries.C) error) aries.Func {
	return func(c *aries.C) error { return f(s, c) }
}

func serveIndex(s *server, c *aries.C) error {
	req := distapi.RequestFromQuery(c.Req.URL.Query())
	if !req.IsDelivery() {
		apps, err := s.lister.List(req.BundleID, req.Language)
		if err != nil {
			return replyError(c, err, false)
		}
		if apps == nil {
			apps = []*distapi.App{}
		}
		return replyJSON(c, http.StatusOK, apps)
	}

	res, err := s.engine.Deliver(req)
	if err != nil {
		update := req.Type == distapi.TypeApp ||
			req.Type == distapi.TypeAuthorize
		return replyError(c, err, update)
	}
	if res.Artifact != nil {
		return replyArtifact(c, res.Artifact)
	}
	return replyJSON(c, http.StatusOK, res.JSON)
}

func serveApps(s *server, c *aries.C) error {
	lang := strings.ToLower(c.Req.URL.Query().Get(distapi.KeyLanguage))
	id := strings.Trim(c.Rel(), "/")
	if id == "" {
		apps, err := s.lister.List("", lang)
		if err != nil {
			return replyError(c, err, false)
		}
		if apps == nil {
			apps = []*distapi.App{}
		}
		return replyJSON(c, http.StatusOK, apps)
	}

	app, err := s.lister.App(id, lang)
	if err != nil {
		return replyError(c, err, false)
	}
	return replyJSON(c, http.StatusOK, app)
}

func apiRouter(s *server) *aries.Router {
	r := aries.NewRouter()
	r.Dir("apps", s.f(serveApps))
	return r
}

func makeRouter(s *server) *aries.Router {
	r := aries.NewRouter()
	r.Index(s.f(serveIndex))
	r.Get("health", aries.StringFunc("ok"))
	r.DirService("api", apiRouter(s))
	if s.live != nil {
		r.Get("live", s.live.ServeWS)
	}
	return r
}
