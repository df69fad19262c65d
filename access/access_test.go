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

package access

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := ioutil.WriteFile(p, []byte(content), 0600); err != nil {
		t.Fatalf("write %q: %s", name, err)
	}
	return p
}

func TestParseTeams(t *testing.T) {
	for _, test := range []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"beta", []string{"beta"}},
		{"qa,beta", []string{"beta", "qa"}},
		{" qa , beta\n", []string{"beta", "qa"}},
		{",,", nil},
	} {
		got := ParseTeams(test.input).List()
		if len(got) == 0 && len(test.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("ParseTeams(%q), got %q, want %q", test.input, got, test.want)
		}
	}
}

func TestUserDirectory(t *testing.T) {
	users := ParseUserDirectory([]byte(
		"XYZ;Xavier;beta,ops\r\n" +
			"QRS;Quinn;ops\n" +
			"\n" +
			"XYZ;Shadow;qa\n" +
			"NOTEAM;Nobody\n",
	))

	for _, test := range []struct {
		id, name string
		teams    []string
	}{
		{"XYZ", "Xavier", []string{"beta", "ops"}},
		{"QRS", "Quinn", []string{"ops"}},
		{"NOTEAM", "Nobody", nil},
		{"UNKNOWN", "UNKNOWN", nil},
	} {
		if got := users.Name(test.id); got != test.name {
			t.Errorf("Name(%q), got %q, want %q", test.id, got, test.name)
		}
		got := users.Teams(test.id).List()
		if len(got) == 0 && len(test.teams) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, test.teams) {
			t.Errorf("Teams(%q), got %q, want %q", test.id, got, test.teams)
		}
	}
}

func TestResolver(t *testing.T) {
	dir, err := ioutil.TempDir("", "access")
	if err != nil {
		t.Fatal("make temp dir:", err)
	}
	defer os.RemoveAll(dir)

	userList := writeFile(t, dir, "userlist.txt",
		"XYZ;Xavier;beta,ops\nQRS;Quinn;ops\n",
	)
	restricted := writeFile(t, dir, "v2.team", "qa,beta")
	empty := writeFile(t, dir, "v1.team", "")
	missing := filepath.Join(dir, "none.team")

	r := NewResolver(userList)
	for _, test := range []struct {
		restriction string
		device      string
		want        bool
	}{
		{restricted, "XYZ", true},
		{restricted, "QRS", false},
		{restricted, "", false},
		{restricted, "UNKNOWN", false},
		{empty, "", true},
		{empty, "QRS", true},
		{missing, "", true},
		{missing, "XYZ", true},
		{"", "", true},
	} {
		got, err := r.IsAllowed(test.restriction, test.device)
		if err != nil {
			t.Errorf(
				"IsAllowed(%q, %q), got error: %s",
				test.restriction, test.device, err,
			)
			continue
		}
		if got != test.want {
			t.Errorf(
				"IsAllowed(%q, %q), got %t, want %t",
				test.restriction, test.device, got, test.want,
			)
		}
	}
}

func TestResolverMissingUserList(t *testing.T) {
	dir, err := ioutil.TempDir("", "access")
	if err != nil {
		t.Fatal("make temp dir:", err)
	}
	defer os.RemoveAll(dir)

	restricted := writeFile(t, dir, "v.team", "beta")
	r := NewResolver(filepath.Join(dir, "stats", "userlist.txt"))
	ok, err := r.IsAllowed(restricted, "XYZ")
	if err != nil {
		t.Fatal("check with missing user list:", err)
	}
	if ok {
		t.Error("device allowed without any user list")
	}
}
