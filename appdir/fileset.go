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

// Package appdir finds deliverable versions of apps in a directory
// tree, where each app is a directory named by its bundle identifier.
package appdir

import (
	"os"
	"path/filepath"
	"strings"

	"shanhu.io/appdist/distapi"
	"shanhu.io/misc/errcode"
)

// File suffixes of the artifact roles.
const (
	SuffixIPA         = ".ipa"
	SuffixPlist       = ".plist"
	SuffixProfile     = ".mobileprovision"
	SuffixAPK         = ".apk"
	SuffixJSON        = ".json"
	SuffixNotes       = ".html"
	SuffixIcon        = ".png"
	SuffixRestriction = ".team"
)

// Content types of installers.
const (
	ContentTypeIPA = "application/octet-stream"
	ContentTypeAPK = "application/vnd.android.package-archive"
)

// FileSet is the complete set of files of one app version for one
// platform. It is either *IOSFiles or *AndroidFiles, and is only ever
// built when the platform's installer and descriptor are both present.
type FileSet interface {
	Platform() string

	// Installer is the path of the installer file.
	Installer() string

	// Descriptor is the path of the metadata descriptor file.
	Descriptor() string

	// Notes is the path of the release notes file, or empty.
	Notes() string

	// Restriction is the path of the restriction file, or empty.
	Restriction() string

	// ContentType is the content type of the installer.
	ContentType() string
}

// IOSFiles is the file set of an iOS version.
type IOSFiles struct {
	IPA             string
	Plist           string
	NotesFile       string
	RestrictionFile string
}

// Platform returns "iOS".
func (f *IOSFiles) Platform() string { return distapi.PlatformIOS }

// Installer returns the .ipa file.
func (f *IOSFiles) Installer() string { return f.IPA }

// Descriptor returns the manifest .plist file.
func (f *IOSFiles) Descriptor() string { return f.Plist }

// Notes returns the release notes file.
func (f *IOSFiles) Notes() string { return f.NotesFile }

// Restriction returns the restriction file.
func (f *IOSFiles) Restriction() string { return f.RestrictionFile }

// ContentType returns the content type of an ipa.
func (f *IOSFiles) ContentType() string { return ContentTypeIPA }

// AndroidFiles is the file set of an Android version.
type AndroidFiles struct {
	APK             string
	JSON            string
	NotesFile       string
	RestrictionFile string
}

// Platform returns "Android".
func (f *AndroidFiles) Platform() string { return distapi.PlatformAndroid }

// Installer returns the .apk file.
func (f *AndroidFiles) Installer() string { return f.APK }

// Descriptor returns the .json descriptor file.
func (f *AndroidFiles) Descriptor() string { return f.JSON }

// Notes returns the release notes file.
func (f *AndroidFiles) Notes() string { return f.NotesFile }

// Restriction returns the restriction file.
func (f *AndroidFiles) Restriction() string { return f.RestrictionFile }

// ContentType returns the content type of an apk.
func (f *AndroidFiles) ContentType() string { return ContentTypeAPK }

// AppFiles are the files shared by all versions of an app.
type AppFiles struct {
	Profile string // .mobileprovision, or empty.
	Icon    string // .png, or empty.
}

// located holds the first file found for every role in a directory.
type located struct {
	ipa, plist, apk, json string
	notes, restriction    string
	profile, icon         string
}

func (l *located) hasIOS() bool     { return l.ipa != "" && l.plist != "" }
func (l *located) hasAndroid() bool { return l.apk != "" && l.json != "" }

// ambiguous returns true when both platforms' pairs are present.
func (l *located) ambiguous() bool { return l.hasIOS() && l.hasAndroid() }

func (l *located) fileSet() FileSet {
	switch {
	case l.ambiguous():
		return nil
	case l.hasIOS():
		return &IOSFiles{
			IPA:             l.ipa,
			Plist:           l.plist,
			NotesFile:       l.notes,
			RestrictionFile: l.restriction,
		}
	case l.hasAndroid():
		return &AndroidFiles{
			APK:             l.apk,
			JSON:            l.json,
			NotesFile:       l.notes,
			RestrictionFile: l.restriction,
		}
	}
	return nil
}

func pickFirst(p *string, dir, name, suffix string) {
	if *p == "" && strings.HasSuffix(name, suffix) {
		*p = filepath.Join(dir, name)
	}
}

// locate scans the regular files of a directory, in listing order. A
// localized notes file (".html.<lang>") takes precedence over the
// default one (".html").
func locate(dir, lang string) (*located, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	l := new(located)
	var localNotes string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		pickFirst(&l.ipa, dir, name, SuffixIPA)
		pickFirst(&l.plist, dir, name, SuffixPlist)
		pickFirst(&l.apk, dir, name, SuffixAPK)
		pickFirst(&l.json, dir, name, SuffixJSON)
		pickFirst(&l.notes, dir, name, SuffixNotes)
		pickFirst(&l.restriction, dir, name, SuffixRestriction)
		pickFirst(&l.profile, dir, name, SuffixProfile)
		pickFirst(&l.icon, dir, name, SuffixIcon)
		if lang != "" {
			pickFirst(&localNotes, dir, name, SuffixNotes+"."+lang)
		}
	}
	if localNotes != "" {
		l.notes = localNotes
	}
	return l, nil
}

// Locate finds the file set in a directory. It returns nil with no
// error when the directory does not hold a complete set for exactly one
// platform.
func Locate(dir, lang string) (FileSet, error) {
	l, err := locate(dir, lang)
	if err != nil {
		return nil, errcode.Annotate(err, "list directory")
	}
	return l.fileSet(), nil
}

// LocateApp finds the app-level files in an app directory.
func LocateApp(appDir string) (*AppFiles, error) {
	l, err := locate(appDir, "")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errcode.NotFoundf("app directory missing")
		}
		return nil, errcode.Annotate(err, "list app directory")
	}
	return &AppFiles{Profile: l.profile, Icon: l.icon}, nil
}
