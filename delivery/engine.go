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

// Package delivery resolves client requests for a single artifact of a
// single app into file streams or metadata responses.
package delivery

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"shanhu.io/appdist/access"
	"shanhu.io/appdist/appdir"
	"shanhu.io/appdist/appmeta"
	"shanhu.io/appdist/distapi"
	"shanhu.io/appdist/stats"
	"shanhu.io/misc/errcode"
)

// Artifact is an opened artifact file. The caller closes Body.
type Artifact struct {
	Name        string // Base name of the file.
	ContentType string
	Size        int64
	ModTime     time.Time
	Body        io.ReadCloser
}

// Result is the outcome of a delivery: either an artifact stream or a
// metadata response to be sent as JSON.
type Result struct {
	Artifact *Artifact
	JSON     interface{}
}

// Notifier is told about every recorded check-in.
type Notifier interface {
	CheckedIn(app string, c *stats.CheckIn)
}

// Config contains the dependencies of an engine.
type Config struct {
	Tree   *appdir.Tree
	Access *access.Resolver
	Stats  stats.Store

	// Optional.
	Notifier   Notifier
	AuthSecret string
	Now        func() time.Time
}

// Engine delivers artifacts. It holds no per-request state and is safe
// to use from multiple goroutines.
type Engine struct {
	tree       *appdir.Tree
	access     *access.Resolver
	stats      stats.Store
	notifier   Notifier
	authSecret string
	now        func() time.Time
}

// NewEngine creates a delivery engine.
func NewEngine(c *Config) *Engine {
	now := c.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		tree:       c.Tree,
		access:     c.Access,
		stats:      c.Stats,
		notifier:   c.Notifier,
		authSecret: c.AuthSecret,
		now:        now,
	}
}

// Deliver serves a delivery request. It picks the newest version of the
// app and checks the caller's access against that version before
// returning anything. Errors are not-found (nothing to deliver),
// unauthorized (the device is not in an allowed team) or invalid
// argument (bad request or bundle identifier).
func (e *Engine) Deliver(req distapi.Request) (*Result, error) {
	if !req.IsDelivery() {
		return nil, errcode.InvalidArgf("need bundle identifier and type")
	}

	versions, err := e.tree.Versions(req.BundleID, req.Language)
	if err != nil {
		return nil, err
	}
	v := appdir.ForDelivery(versions)
	if v == nil {
		return nil, errcode.NotFoundf(
			"app %q has no deliverable version", req.BundleID,
		)
	}

	allowed, err := e.access.IsAllowed(v.Files.Restriction(), req.Device)
	if err != nil {
		return nil, errcode.Annotate(err, "check access")
	}

	if req.Type == distapi.TypeAuthorize {
		return &Result{JSON: e.authorize(req, allowed)}, nil
	}
	if !allowed {
		return nil, errcode.Unauthorizedf(
			"device not allowed to access version %q of %q",
			v.Label, req.BundleID,
		)
	}

	res, err := e.serve(req, v)
	if err != nil {
		return nil, err
	}
	if req.Device != "" && req.Type != distapi.TypeProfile {
		e.recordCheckIn(req)
	}
	return res, nil
}

func (e *Engine) serve(req distapi.Request, v *appdir.Version) (
	*Result, error,
) {
	switch req.Type {
	case distapi.TypeProfile:
		files, err := e.tree.AppFiles(req.BundleID)
		if err != nil {
			return nil, err
		}
		if files.Profile == "" {
			return nil, errcode.NotFoundf(
				"app %q has no provisioning profile", req.BundleID,
			)
		}
		return openResult(files.Profile, appdir.ContentTypeIPA)
	case distapi.TypeApp:
		resp, err := updateResponse(v, req.API)
		if err != nil {
			return nil, err
		}
		return &Result{JSON: resp}, nil
	case distapi.TypeIPA:
		ios, ok := v.Files.(*appdir.IOSFiles)
		if !ok {
			return nil, errcode.NotFoundf("version %q has no ipa", v.Label)
		}
		return openResult(ios.IPA, ios.ContentType())
	case distapi.TypeAPK:
		android, ok := v.Files.(*appdir.AndroidFiles)
		if !ok {
			return nil, errcode.NotFoundf("version %q has no apk", v.Label)
		}
		return openResult(android.APK, android.ContentType())
	}
	return nil, errcode.InvalidArgf("unknown type %q", req.Type)
}

// recordCheckIn saves the check-in of the request. Failures are logged
// and do not fail the delivery.
func (e *Engine) recordCheckIn(req distapi.Request) {
	c := stats.NewCheckIn(req, e.now())
	if err := e.stats.Put(req.BundleID, c); err != nil {
		log.Printf("record check-in of %q: %s", req.BundleID, err)
		return
	}
	if e.notifier != nil {
		e.notifier.CheckedIn(req.BundleID, c)
	}
}

// openResult opens an artifact file. A file that went away after the
// version was picked is reported as not found, so that the client can
// retry.
func openResult(f, contentType string) (*Result, error) {
	a, err := openArtifact(f, contentType)
	if err != nil {
		return nil, err
	}
	return &Result{Artifact: a}, nil
}

func openArtifact(f, contentType string) (*Artifact, error) {
	file, err := os.Open(f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.NotFoundf(
				"artifact %q removed", filepath.Base(f),
			)
		}
		return nil, errcode.Annotate(err, "open artifact")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errcode.Annotate(err, "stat artifact")
	}
	return &Artifact{
		Name:        filepath.Base(f),
		ContentType: contentType,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Body:        file,
	}, nil
}

func updateResponse(v *appdir.Version, api distapi.APIVersion) (
	interface{}, error,
) {
	meta, err := appmeta.Read(v.Files)
	if err != nil {
		return nil, errcode.Annotatef(err, "read metadata of %q", v.Label)
	}
	notes, err := appmeta.ReadNotes(v.Files.Notes())
	if err != nil {
		return nil, err
	}

	if api == distapi.APIV1 {
		return &distapi.UpdateV1{
			Result:   meta.Version,
			Notes:    notes,
			Title:    meta.Title,
			Subtitle: meta.Subtitle,
		}, nil
	}

	info, err := os.Stat(v.Files.Installer())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.NotFoundf("installer of %q removed", v.Label)
		}
		return nil, errcode.Annotate(err, "stat installer")
	}
	return &distapi.UpdateV2{
		Version:      meta.Version,
		ShortVersion: meta.ShortVersion,
		Notes:        notes,
		Title:        meta.Title,
		Timestamp:    info.ModTime().Unix(),
		AppSize:      info.Size(),
	}, nil
}
