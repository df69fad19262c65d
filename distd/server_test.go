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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"shanhu.io/appdist/distapi"
	"shanhu.io/appdist/distconfig"
	"shanhu.io/appdist/livefeed"
	"shanhu.io/aries"
	"shanhu.io/misc/osutil"
)

const testManifest = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>items</key>
	<array>
		<dict>
			<key>metadata</key>
			<dict>
				<key>bundle-version</key>
				<string>VERSION</string>
				<key>title</key>
				<string>Acme</string>
			</dict>
		</dict>
	</array>
</dict>
</plist>
`

func testHome(t *testing.T) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "distd")
	if err != nil {
		t.Fatal("make temp dir:", err)
	}
	for p, content := range map[string]string{
		"apps/com.acme.app/1.0/app.ipa":   "ipa-1.0",
		"apps/com.acme.app/1.0/app.plist": strings.Replace(testManifest, "VERSION", "1.0", 1),
		"apps/com.acme.app/1.1/app.ipa":   "ipa-1.1",
		"apps/com.acme.app/1.1/app.plist": strings.Replace(testManifest, "VERSION", "1.1", 1),
		"apps/com.acme.app/1.1/qa.team":   "qa",
		"apps/com.acme.droid/app apk.apk": "apk",
		"apps/com.acme.droid/app.json":    `{"title": "Droid", "versionName": "3.0", "versionCode": 30}`,
		"apps/stats/userlist.txt":         "XYZ;Xavier;qa\n",
	} {
		fp := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(fp), 0700); err != nil {
			t.Fatal("make dir:", err)
		}
		if err := ioutil.WriteFile(fp, []byte(content), 0600); err != nil {
			t.Fatal("write file:", err)
		}
	}
	return dir
}

func startServer(t *testing.T, dir string, c *distconfig.Config) (
	*server, *httptest.Server,
) {
	t.Helper()
	h, err := osutil.NewHome(dir)
	if err != nil {
		t.Fatal("open home:", err)
	}
	s, err := newServer(h, c)
	if err != nil {
		t.Fatal("create server:", err)
	}
	return s, httptest.NewServer(aries.Serve(makeRouter(s)))
}

func get(t *testing.T, u string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatalf("get %q: %s", u, err)
	}
	defer resp.Body.Close()
	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body of %q: %s", u, err)
	}
	return resp, string(bs)
}

func query(kvs ...string) string {
	q := make(url.Values)
	for i := 0; i+1 < len(kvs); i += 2 {
		q.Set(kvs[i], kvs[i+1])
	}
	return "/?" + q.Encode()
}

func TestServeDelivery(t *testing.T) {
	dir := testHome(t)
	defer os.RemoveAll(dir)

	s, hs := startServer(t, dir, &distconfig.Config{})
	defer hs.Close()

	resp, body := get(t, hs.URL+query(
		distapi.KeyBundleID, "com.acme.app",
		distapi.KeyType, "ipa",
		distapi.KeyDevice, "XYZ",
		distapi.KeyAppVersion, "1.0",
	))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get ipa, got status %d", resp.StatusCode)
	}
	if body != "ipa-1.1" {
		t.Errorf("get ipa, got %q", body)
	}
	h := resp.Header
	if got := h.Get("Content-Type"); got != "application/octet-stream" {
		t.Errorf("content type, got %q", got)
	}
	if got := h.Get("Content-Disposition"); got != "attachment; filename=app.ipa" {
		t.Errorf("content disposition, got %q", got)
	}
	if got := h.Get("Content-Transfer-Encoding"); got != "binary" {
		t.Errorf("transfer encoding, got %q", got)
	}
	if _, err := s.stats.Get("com.acme.app", "XYZ"); err != nil {
		t.Errorf("check-in not recorded: %s", err)
	}

	resp, _ = get(t, hs.URL+query(
		distapi.KeyBundleID, "com.acme.droid", distapi.KeyType, "apk",
	))
	want := "attachment; filename=app%20apk.apk"
	if got := resp.Header.Get("Content-Disposition"); got != want {
		t.Errorf("apk content disposition, got %q, want %q", got, want)
	}

	resp, body = get(t, hs.URL+query(
		distapi.KeyBundleID, "com.acme.droid",
		distapi.KeyType, "app",
		distapi.KeyAPIVersion, "2",
	))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get app, got status %d", resp.StatusCode)
	}
	update := new(distapi.UpdateV2)
	if err := json.Unmarshal([]byte(body), update); err != nil {
		t.Fatalf("decode %q: %s", body, err)
	}
	if update.Version != "30" || update.Title != "Droid" {
		t.Errorf("update, got %+v", update)
	}
}

func TestServeErrors(t *testing.T) {
	dir := testHome(t)
	defer os.RemoveAll(dir)

	_, hs := startServer(t, dir, &distconfig.Config{})
	defer hs.Close()

	for _, test := range []struct {
		path string
		code int
		body string
	}{
		{query(distapi.KeyBundleID, "com.acme.app", distapi.KeyType, "ipa"), 403, ""},
		{query(distapi.KeyBundleID, "com.acme.droid", distapi.KeyType, "ipa"), 404, ""},
		{query(distapi.KeyBundleID, "com.nope", distapi.KeyType, "app"), 404, `{"result":-1}`},
		{query(distapi.KeyBundleID, "../etc", distapi.KeyType, "ipa"), 400, ""},
		{"/api/apps/com.nope", 404, ""},
	} {
		resp, body := get(t, hs.URL+test.path)
		if resp.StatusCode != test.code {
			t.Errorf("get %q, got status %d, want %d",
				test.path, resp.StatusCode, test.code)
		}
		if test.body != "" && body != test.body {
			t.Errorf("get %q, got %q, want %q", test.path, body, test.body)
		}
	}
}

func TestServeListing(t *testing.T) {
	dir := testHome(t)
	defer os.RemoveAll(dir)

	_, hs := startServer(t, dir, &distconfig.Config{})
	defer hs.Close()

	for _, test := range []struct {
		path string
		want []string
	}{
		{"/", []string{"com.acme.app", "com.acme.droid"}},
		{query(distapi.KeyBundleID, "com.acme.droid"), []string{"com.acme.droid"}},
		{query(distapi.KeyBundleID, "com.nope"), nil},
		{"/api/apps", []string{"com.acme.app", "com.acme.droid"}},
	} {
		resp, body := get(t, hs.URL+test.path)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("get %q, got status %d", test.path, resp.StatusCode)
			continue
		}
		var apps []*distapi.App
		if err := json.Unmarshal([]byte(body), &apps); err != nil {
			t.Errorf("decode %q: %s", body, err)
			continue
		}
		var got []string
		for _, app := range apps {
			got = append(got, app.Dir)
		}
		if strings.Join(got, ",") != strings.Join(test.want, ",") {
			t.Errorf("get %q, got %q, want %q", test.path, got, test.want)
		}
	}

	resp, body := get(t, hs.URL+"/api/apps/com.acme.app")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get app, got status %d", resp.StatusCode)
	}
	app := new(distapi.App)
	if err := json.Unmarshal([]byte(body), app); err != nil {
		t.Fatalf("decode %q: %s", body, err)
	}
	if app.Version != "1.0" {
		t.Errorf("listed version, got %q, want 1.0", app.Version)
	}

	_, body = get(t, hs.URL+"/health")
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("health, got %q", body)
	}
}

func TestServeSqliteStats(t *testing.T) {
	dir := testHome(t)
	defer os.RemoveAll(dir)

	s, hs := startServer(t, dir, &distconfig.Config{
		Stats:   distconfig.StatsSqlite,
		StatsDB: filepath.Join(dir, "stats.db"),
	})
	defer hs.Close()

	for _, v := range []string{"1.0", "1.1"} {
		resp, _ := get(t, hs.URL+query(
			distapi.KeyBundleID, "com.acme.droid",
			distapi.KeyType, "app",
			distapi.KeyDevice, "ABC",
			distapi.KeyAppVersion, v,
		))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("get app, got status %d", resp.StatusCode)
		}
	}

	list, err := s.stats.List("com.acme.droid")
	if err != nil {
		t.Fatal("list stats:", err)
	}
	if len(list) != 1 || list[0].AppVersion != "1.1" {
		t.Errorf("got check-ins %+v, want one at 1.1", list)
	}
	if ok, err := osutil.Exist(filepath.Join(dir, "apps/stats/com.acme.droid")); err != nil {
		t.Fatal(err)
	} else if ok {
		t.Error("sqlite backend wrote a flat stats file")
	}
}

func TestServeLiveFeed(t *testing.T) {
	dir := testHome(t)
	defer os.RemoveAll(dir)

	_, hs := startServer(t, dir, &distconfig.Config{LiveFeed: true})
	defer hs.Close()

	u := "ws" + strings.TrimPrefix(hs.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatal("dial live feed:", err)
	}
	defer conn.Close()

	get(t, hs.URL+query(
		distapi.KeyBundleID, "com.acme.droid",
		distapi.KeyType, "apk",
		distapi.KeyDevice, "ABC",
		distapi.KeyPlatform, "iPhone3,1",
	))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	ev := new(livefeed.Event)
	if err := conn.ReadJSON(ev); err != nil {
		t.Fatal("read event:", err)
	}
	if ev.App != "com.acme.droid" || ev.CheckIn.Device != "ABC" {
		t.Errorf("got event %+v", ev)
	}
}
