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

package stats

import (
	"sort"
	"sync"

	"shanhu.io/appdist/appdir"
	"shanhu.io/misc/errcode"
	"shanhu.io/pisces"
	"shanhu.io/pisces/settings"
)

const keySeq = "stats.seq"

type kvEntry struct {
	App     string
	Seq     int64
	CheckIn *CheckIn
}

// KVStore keeps check-ins in a pisces key-value table, so that stats can
// live in sqlite or postgres instead of flat files. Each entry carries
// a sequence number from the settings table to keep the first check-in
// order.
type KVStore struct {
	mu       sync.Mutex
	t        *pisces.KV
	settings *settings.Table
}

// NewKVStore creates the stats tables in b. The caller creates missing
// tables after all tables are declared.
func NewKVStore(b *pisces.Tables) *KVStore {
	return &KVStore{
		t:        b.NewKV("checkins"),
		settings: settings.NewTable(b),
	}
}

func kvKey(app, device string) string { return app + "/" + device }

func (s *KVStore) nextSeq() (int64, error) {
	var seq int64
	if err := s.settings.Get(keySeq, &seq); err != nil {
		if !errcode.IsNotFound(err) {
			return 0, errcode.Annotate(err, "read sequence")
		}
	}
	seq++
	if err := s.settings.Set(keySeq, seq); err != nil {
		return 0, errcode.Annotate(err, "save sequence")
	}
	return seq, nil
}

// Put upserts a check-in.
func (s *KVStore) Put(app string, c *CheckIn) error {
	if err := appdir.ValidateBundleID(app); err != nil {
		return err
	}
	c = c.clean()
	if c.Device == "" {
		return errcode.InvalidArgf("check-in has no device")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := kvKey(app, c.Device)
	has, err := s.t.Has(key)
	if err != nil {
		return errcode.Annotate(err, "check device")
	}
	if has {
		return s.t.Mutate(key, new(kvEntry), func(v interface{}) error {
			v.(*kvEntry).CheckIn = c
			return nil
		})
	}

	seq, err := s.nextSeq()
	if err != nil {
		return err
	}
	return s.t.Add(key, &kvEntry{App: app, Seq: seq, CheckIn: c})
}

// Get returns the check-in of a device.
func (s *KVStore) Get(app, device string) (*CheckIn, error) {
	entry := new(kvEntry)
	if err := s.t.Get(kvKey(app, device), entry); err != nil {
		if errcode.IsNotFound(err) {
			return nil, errcode.NotFoundf(
				"device %q not found in %q", device, app,
			)
		}
		return nil, err
	}
	return entry.CheckIn, nil
}

// List returns all check-ins of an app.
func (s *KVStore) List(app string) ([]*CheckIn, error) {
	var entries []*kvEntry
	it := &pisces.Iter{
		Make: func() interface{} { return new(kvEntry) },
		Do: func(_ string, v interface{}) error {
			if entry := v.(*kvEntry); entry.App == app {
				entries = append(entries, entry)
			}
			return nil
		},
	}
	if err := s.t.Walk(it); err != nil {
		return nil, errcode.Annotate(err, "walk check-ins")
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Seq < entries[j].Seq
	})

	list := make([]*CheckIn, len(entries))
	for i, entry := range entries {
		list[i] = entry.CheckIn
	}
	return list, nil
}
