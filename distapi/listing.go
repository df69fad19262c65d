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

// App is the summary of one app shown in the public listing.
type App struct {
	Dir      string `json:"dir"`
	Title    string `json:"app"`
	Subtitle string `json:"subtitle,omitempty"`
	Version  string `json:"version"`
	Platform string `json:"platform"`

	Date    int64 `json:"date"` // Installer modification time, unix seconds.
	AppSize int64 `json:"appsize"`

	Image string `json:"image,omitempty"` // Relative to the apps root.
	Notes string `json:"notes"`

	Profile       string `json:"profile,omitempty"`
	ProfileUpdate int64  `json:"profileupdate,omitempty"`

	Stats []*Device `json:"stats"`
}

// Device is one row of the device statistics of an app.
type Device struct {
	User       string `json:"user"`
	Platform   string `json:"platform"`
	OSVersion  string `json:"osversion"`
	AppVersion string `json:"appversion"`
	LastCheck  string `json:"lastcheck"`
	Language   string `json:"language"`
}
