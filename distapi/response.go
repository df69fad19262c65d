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

// Platform names used in responses and listings.
const (
	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
)

// ResultNotFound is the result code returned to update clients when an
// app has no deliverable version.
const ResultNotFound = -1

// AuthFailed is the auth code returned when a device is not authorized.
const AuthFailed = "FAILED"

// NotFoundResponse is the body sent to update clients when nothing can
// be delivered.
type NotFoundResponse struct {
	Result int `json:"result"`
}

// UpdateV1 is the version 1 metadata response.
type UpdateV1 struct {
	Result   string `json:"result"` // The bundle version.
	Notes    string `json:"notes,omitempty"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// UpdateV2 is the version 2 metadata response.
type UpdateV2 struct {
	Version      string `json:"version"`
	ShortVersion string `json:"shortversion,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Title        string `json:"title,omitempty"`
	Timestamp    int64  `json:"timestamp"`
	AppSize      int64  `json:"appsize"`
}

// AuthResponse is the response of the authorize flow.
type AuthResponse struct {
	AuthCode string `json:"authcode"`
}
