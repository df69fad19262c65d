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
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"shanhu.io/appdist/delivery"
	"shanhu.io/appdist/distapi"
	"shanhu.io/aries"
	"shanhu.io/misc/errcode"
)

func replyJSON(c *aries.C, code int, v interface{}) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return errcode.Annotate(err, "encode json")
	}
	h := c.Resp.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(bs)))
	c.Resp.WriteHeader(code)
	if _, err := c.Resp.Write(bs); err != nil {
		log.Println("write json reply: ", err)
	}
	return nil
}

func errorStatus(err error) int {
	switch {
	case errcode.IsNotFound(err):
		return http.StatusNotFound
	case errcode.IsUnauthorized(err):
		return http.StatusForbidden
	case errcode.IsInvalidArg(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// replyError writes an error reply. Update checks of client SDKs expect
// a JSON body with a negative result when there is nothing to deliver.
func replyError(c *aries.C, err error, update bool) error {
	code := errorStatus(err)
	if code == http.StatusNotFound && update {
		return replyJSON(c, code, &distapi.NotFoundResponse{
			Result: distapi.ResultNotFound,
		})
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("%s: %s", c.Req.URL.Path, err)
		msg = "internal error"
	}
	http.Error(c.Resp, msg, code)
	return nil
}

func replyArtifact(c *aries.C, a *delivery.Artifact) error {
	defer a.Body.Close()

	h := c.Resp.Header()
	h.Set("Content-Type", a.ContentType)
	h.Set(
		"Content-Disposition",
		"attachment; filename="+url.PathEscape(a.Name),
	)
	h.Set("Content-Transfer-Encoding", "binary")
	h.Set("Content-Length", strconv.FormatInt(a.Size, 10))
	c.Resp.WriteHeader(http.StatusOK)

	if c.Req.Method == http.MethodHead {
		return nil
	}
	if _, err := io.Copy(c.Resp, a.Body); err != nil {
		// Headers are out; the client sees a short body.
		log.Printf("send %q: %s", a.Name, err)
	}
	return nil
}
