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

package distapi

import (
	"net/url"
	"strings"
)

// ArtifactType is the kind of deliverable a client asks for.
type ArtifactType string

// Artifact types accepted in the "type" query parameter.
const (
	TypeProfile   ArtifactType = "profile"
	TypeApp       ArtifactType = "app"
	TypeIPA       ArtifactType = "ipa"
	TypeAPK       ArtifactType = "apk"
	TypeAuthorize ArtifactType = "authorize"
)

var artifactTypes = []ArtifactType{
	TypeProfile, TypeApp, TypeIPA, TypeAPK, TypeAuthorize,
}

// ParseArtifactType parses an artifact type. It returns false when the
// type is not one of the known types.
func ParseArtifactType(s string) (ArtifactType, bool) {
	for _, t := range artifactTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// APIVersion is the version of the metadata response format.
type APIVersion int

// Supported response format versions.
const (
	APIV1 APIVersion = 1
	APIV2 APIVersion = 2
)

// ParseAPIVersion parses the "api" query parameter. Anything other than
// "2" falls back to version 1.
func ParseAPIVersion(s string) APIVersion {
	if s == "2" {
		return APIV2
	}
	return APIV1
}

// Query keys sent by update clients.
const (
	KeyType       = "type"
	KeyBundleID   = "bundleidentifier"
	KeyAPIVersion = "api"
	KeyDevice     = "udid"
	KeyAppVersion = "version"
	KeyOSVersion  = "ios"
	KeyPlatform   = "platform"
	KeyLanguage   = "lang"
)

// Request is the immutable context of one client request. It is built
// once from the query and passed explicitly into every engine call.
type Request struct {
	BundleID string
	Type     ArtifactType // Empty when no valid type is given.
	API      APIVersion

	// Device is the requesting device identity; empty when anonymous.
	Device     string
	Platform   string
	OSVersion  string
	AppVersion string
	Language   string // Lower-cased.
}

// RequestFromQuery builds a request from URL query values. An unknown
// type is dropped, so the request becomes a listing request.
func RequestFromQuery(q url.Values) Request {
	t, _ := ParseArtifactType(q.Get(KeyType))
	return Request{
		BundleID:   q.Get(KeyBundleID),
		Type:       t,
		API:        ParseAPIVersion(q.Get(KeyAPIVersion)),
		Device:     q.Get(KeyDevice),
		Platform:   q.Get(KeyPlatform),
		OSVersion:  q.Get(KeyOSVersion),
		AppVersion: q.Get(KeyAppVersion),
		Language:   strings.ToLower(q.Get(KeyLanguage)),
	}
}

// IsDelivery returns true when the request asks for a single artifact
// of a single app.
func (r Request) IsDelivery() bool {
	return r.BundleID != "" && r.Type != ""
}
