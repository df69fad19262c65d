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

// Package appmeta reads the metadata descriptors and release notes of
// app versions.
package appmeta

import (
	"io/ioutil"
	"strconv"

	"howett.net/plist"
	"shanhu.io/appdist/appdir"
	"shanhu.io/misc/errcode"
	"shanhu.io/misc/jsonx"
)

// Meta is the metadata of an app version.
type Meta struct {
	Title        string
	Subtitle     string
	Version      string
	ShortVersion string
}

type manifest struct {
	Items []manifestItem `plist:"items"`
}

type manifestItem struct {
	Metadata *manifestMetadata `plist:"metadata"`
}

type manifestMetadata struct {
	BundleIdentifier   string `plist:"bundle-identifier"`
	BundleVersion      string `plist:"bundle-version"`
	BundleShortVersion string `plist:"bundle-short-version-string"`
	Kind               string `plist:"kind"`
	Title              string `plist:"title"`
	Subtitle           string `plist:"subtitle"`
}

// ParseIOS parses an over-the-air install manifest plist.
func ParseIOS(bs []byte) (*Meta, error) {
	m := new(manifest)
	if _, err := plist.Unmarshal(bs, m); err != nil {
		return nil, errcode.InvalidArgf("parse manifest plist: %s", err)
	}
	if len(m.Items) == 0 || m.Items[0].Metadata == nil {
		return nil, errcode.InvalidArgf("manifest has no item metadata")
	}
	md := m.Items[0].Metadata
	short := md.BundleShortVersion
	if short == "" {
		short = md.BundleVersion
	}
	return &Meta{
		Title:        md.Title,
		Subtitle:     md.Subtitle,
		Version:      md.BundleVersion,
		ShortVersion: short,
	}, nil
}

type androidDescriptor struct {
	Title       string      `json:"title"`
	VersionName string      `json:"versionName"`
	VersionCode interface{} `json:"versionCode"`
}

func versionCodeString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// ReadAndroid reads an Android JSON descriptor. The version name is
// used as both the subtitle and the short version.
func ReadAndroid(f string) (*Meta, error) {
	d := new(androidDescriptor)
	if err := jsonx.ReadFile(f, d); err != nil {
		return nil, errcode.Annotate(err, "read android descriptor")
	}
	return &Meta{
		Title:        d.Title,
		Subtitle:     d.VersionName,
		Version:      versionCodeString(d.VersionCode),
		ShortVersion: d.VersionName,
	}, nil
}

// ReadIOS reads an iOS manifest plist file.
func ReadIOS(f string) (*Meta, error) {
	bs, err := ioutil.ReadFile(f)
	if err != nil {
		return nil, errcode.Annotate(err, "read manifest")
	}
	return ParseIOS(bs)
}

// Read reads the metadata descriptor of a file set.
func Read(fs appdir.FileSet) (*Meta, error) {
	switch fs := fs.(type) {
	case *appdir.IOSFiles:
		return ReadIOS(fs.Plist)
	case *appdir.AndroidFiles:
		return ReadAndroid(fs.JSON)
	}
	return nil, errcode.Internalf("unknown file set %T", fs)
}
