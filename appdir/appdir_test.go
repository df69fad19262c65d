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

package appdir

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"shanhu.io/appdist/semver"
	"shanhu.io/misc/errcode"
)

func makeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root, err := ioutil.TempDir("", "appdir")
	if err != nil {
		t.Fatal("make temp dir:", err)
	}
	for p, content := range files {
		fp := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(fp), 0700); err != nil {
			t.Fatal("make dir:", err)
		}
		if err := ioutil.WriteFile(fp, []byte(content), 0600); err != nil {
			t.Fatal("write file:", err)
		}
	}
	return root
}

func labels(vs []*Version) []string {
	var ret []string
	for _, v := range vs {
		ret = append(ret, v.Label)
	}
	return ret
}

func TestVersionScenario(t *testing.T) {
	root := makeTree(t, map[string]string{
		"com.acme.app/1.0/app.ipa":   "ipa10",
		"com.acme.app/1.0/app.plist": "plist10",
		"com.acme.app/1.1/app.ipa":   "ipa11",
		"com.acme.app/1.1/app.plist": "plist11",
		"com.acme.app/1.1/beta.team": "beta",
	})
	defer os.RemoveAll(root)

	tree := NewTree(root, nil)
	vs, err := tree.Versions("com.acme.app", "")
	if err != nil {
		t.Fatal("enumerate:", err)
	}
	if got, want := labels(vs), []string{"1.1", "1.0"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("versions, got %q, want %q", got, want)
	}

	display, err := ForDisplay(vs)
	if err != nil {
		t.Fatal("select for display:", err)
	}
	if display == nil || display.Label != "1.0" {
		t.Errorf("display version, got %v, want 1.0", display)
	}

	deliver := ForDelivery(vs)
	if deliver == nil || deliver.Label != "1.1" {
		t.Errorf("delivery version, got %v, want 1.1", deliver)
	}
	ios, ok := deliver.Files.(*IOSFiles)
	if !ok {
		t.Fatalf("delivery files, got %T, want *IOSFiles", deliver.Files)
	}
	if want := filepath.Join(root, "com.acme.app/1.1/app.ipa"); ios.IPA != want {
		t.Errorf("ipa, got %q, want %q", ios.IPA, want)
	}
}

func TestEnumerateSkipsIncomplete(t *testing.T) {
	root := makeTree(t, map[string]string{
		"app/3.0/app.ipa":         "only ipa",
		"app/2.0/app.apk":         "apk",
		"app/2.0/app.json":        "{}",
		"app/1.5/app.ipa":         "ipa",
		"app/1.5/app.plist":       "plist",
		"app/1.5/app.apk":         "apk",
		"app/1.5/app.json":        "{}",
		"app/1.0/app.ipa":         "ipa",
		"app/1.0/app.plist":       "plist",
		"app/1.0/notes.html":      "notes",
		"app/icon.png":            "png",
		"app/dev.mobileprovision": "profile",
	})
	defer os.RemoveAll(root)

	tree := NewTree(root, nil)
	vs, err := tree.Versions("app", "")
	if err != nil {
		t.Fatal("enumerate:", err)
	}
	if got, want := labels(vs), []string{"2.0", "1.0"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("versions, got %q, want %q", got, want)
	}
	if _, ok := vs[0].Files.(*AndroidFiles); !ok {
		t.Errorf("2.0 files, got %T, want *AndroidFiles", vs[0].Files)
	}
	if got := vs[1].Files.Notes(); filepath.Base(got) != "notes.html" {
		t.Errorf("1.0 notes, got %q", got)
	}

	af, err := tree.AppFiles("app")
	if err != nil {
		t.Fatal("app files:", err)
	}
	if filepath.Base(af.Icon) != "icon.png" {
		t.Errorf("icon, got %q", af.Icon)
	}
	if filepath.Base(af.Profile) != "dev.mobileprovision" {
		t.Errorf("profile, got %q", af.Profile)
	}
}

func TestEnumerateFlat(t *testing.T) {
	root := makeTree(t, map[string]string{
		"app/app.apk":       "apk",
		"app/app.json":      "{}",
		"app/9.0/app.apk":   "apk",
		"app/9.0/app.json":  "{}",
		"none/readme.txt":   "nothing",
		"none/1.0/app.ipa":  "ipa",
		"none/1.0/app.json": "{}",
	})
	defer os.RemoveAll(root)

	tree := NewTree(root, nil)
	vs, err := tree.Versions("app", "")
	if err != nil {
		t.Fatal("enumerate:", err)
	}
	if len(vs) != 1 || !vs[0].Flat || vs[0].Label != "app" {
		t.Errorf("flat layout, got %q", labels(vs))
	}

	vs, err = tree.Versions("none", "")
	if err != nil {
		t.Fatal("enumerate:", err)
	}
	if len(vs) != 0 {
		t.Errorf("incomplete app, got versions %q", labels(vs))
	}
}

func TestEnumerateOrder(t *testing.T) {
	files := make(map[string]string)
	for _, v := range []string{"1.9", "1.10", "2.0", "1.2"} {
		files["app/"+v+"/a.ipa"] = "ipa"
		files["app/"+v+"/a.plist"] = "plist"
	}
	root := makeTree(t, files)
	defer os.RemoveAll(root)

	for _, test := range []struct {
		order semver.Order
		want  []string
	}{
		{semver.Lexical, []string{"2.0", "1.9", "1.2", "1.10"}},
		{semver.Semantic, []string{"2.0", "1.10", "1.9", "1.2"}},
	} {
		vs, err := NewTree(root, test.order).Versions("app", "")
		if err != nil {
			t.Fatal("enumerate:", err)
		}
		if got := labels(vs); !reflect.DeepEqual(got, test.want) {
			t.Errorf("versions, got %q, want %q", got, test.want)
		}
	}
}

func TestLocateNotes(t *testing.T) {
	root := makeTree(t, map[string]string{
		"v/a.ipa":     "ipa",
		"v/a.plist":   "plist",
		"v/a.html":    "default",
		"v/a.html.de": "german",
		"v/a.html.fr": "french",
	})
	defer os.RemoveAll(root)

	dir := filepath.Join(root, "v")
	for _, test := range []struct {
		lang, want string
	}{
		{"", "a.html"},
		{"de", "a.html.de"},
		{"fr", "a.html.fr"},
		{"ja", "a.html"},
	} {
		fs, err := Locate(dir, test.lang)
		if err != nil {
			t.Fatal("locate:", err)
		}
		if got := filepath.Base(fs.Notes()); got != test.want {
			t.Errorf("notes for %q, got %q, want %q", test.lang, got, test.want)
		}
	}
}

func TestDisplaySkipsOnlyIOS(t *testing.T) {
	root := makeTree(t, map[string]string{
		"app/2.0/a.apk":   "apk",
		"app/2.0/a.json":  "{}",
		"app/2.0/t.team":  "qa",
		"app/1.0/a.apk":   "apk",
		"app/1.0/a.json":  "{}",
		"ios/2.0/a.ipa":   "ipa",
		"ios/2.0/a.plist": "plist",
		"ios/2.0/t.team":  "qa",
		"ios/1.0/a.ipa":   "ipa",
		"ios/1.0/a.plist": "plist",
		"ios/1.0/t.team":  "",
	})
	defer os.RemoveAll(root)

	tree := NewTree(root, nil)
	for _, test := range []struct {
		app, want string
	}{
		{"app", "2.0"},
		{"ios", "1.0"},
	} {
		vs, err := tree.Versions(test.app, "")
		if err != nil {
			t.Fatal("enumerate:", err)
		}
		v, err := ForDisplay(vs)
		if err != nil {
			t.Fatal("select for display:", err)
		}
		if v == nil || v.Label != test.want {
			t.Errorf("display version of %q, got %v, want %q", test.app, v, test.want)
		}
	}
}

func TestDisplayAllRestricted(t *testing.T) {
	root := makeTree(t, map[string]string{
		"ios/1.0/a.ipa":   "ipa",
		"ios/1.0/a.plist": "plist",
		"ios/1.0/t.team":  "beta",
	})
	defer os.RemoveAll(root)

	vs, err := NewTree(root, nil).Versions("ios", "")
	if err != nil {
		t.Fatal("enumerate:", err)
	}
	v, err := ForDisplay(vs)
	if err != nil {
		t.Fatal("select for display:", err)
	}
	if v != nil {
		t.Errorf("display version, got %q, want none", v.Label)
	}
	if ForDelivery(nil) != nil {
		t.Error("delivery of nothing should be nil")
	}
}

func TestTree(t *testing.T) {
	root := makeTree(t, map[string]string{
		"b.app/private":      "",
		"a.app/x.txt":        "",
		"stats/a.app":        "",
		"stats/userlist.txt": "",
		".hidden/x":          "",
	})
	defer os.RemoveAll(root)

	tree := NewTree(root, nil)
	apps, err := tree.Apps()
	if err != nil {
		t.Fatal("list apps:", err)
	}
	if want := []string{"a.app", "b.app"}; !reflect.DeepEqual(apps, want) {
		t.Errorf("apps, got %q, want %q", apps, want)
	}

	for _, test := range []struct {
		id   string
		want bool
	}{
		{"a.app", false},
		{"b.app", true},
	} {
		got, err := tree.IsPrivate(test.id)
		if err != nil {
			t.Fatal("check private:", err)
		}
		if got != test.want {
			t.Errorf("IsPrivate(%q), got %t, want %t", test.id, got, test.want)
		}
	}

	for _, id := range []string{"", ".", "../etc", "a/b", `a\b`, "x..y"} {
		if _, err := tree.AppDir(id); !errcode.IsInvalidArg(err) {
			t.Errorf("AppDir(%q), got %v, want invalid arg", id, err)
		}
	}
	if _, err := tree.AppDir("c.app"); !errcode.IsNotFound(err) {
		t.Errorf("AppDir of missing app, got %v, want not found", err)
	}
}
