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
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"sync"

	"shanhu.io/appdist/appdir"
	"shanhu.io/misc/errcode"
)

// FileStore keeps the check-ins of each app in a flat file named by the
// bundle identifier, one "id;;platform;;os;;version;;time;;lang" line
// per device. Writes to the same app are serialized, and every write
// replaces the file with an atomic rename, so readers never see a
// partial file. Other processes writing the same files are not
// coordinated with.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a file store in the given directory, creating
// the directory when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errcode.Annotate(err, "make stats dir")
	}
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) lock(app string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[app]
	if !ok {
		l = new(sync.Mutex)
		s.locks[app] = l
	}
	return l
}

func (s *FileStore) file(app string) (string, error) {
	if err := appdir.ValidateBundleID(app); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, app), nil
}

func readIfExist(f string) ([]byte, error) {
	bs, err := ioutil.ReadFile(f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return bs, nil
}

func (s *FileStore) writeFile(f string, bs []byte) error {
	tmp, err := ioutil.TempFile(s.dir, ".tmp-"+filepath.Base(f)+"-")
	if err != nil {
		return errcode.Annotate(err, "create temp file")
	}
	ok := false
	defer func() {
		tmp.Close()
		if !ok {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(bs); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return errcode.Annotate(err, "chmod temp file")
	}
	if err := tmp.Sync(); err != nil {
		return errcode.Annotate(err, "sync to storage")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f); err != nil {
		return errcode.Annotate(err, "replace stats file")
	}
	ok = true
	return nil
}

// Put upserts a check-in.
func (s *FileStore) Put(app string, c *CheckIn) error {
	c = c.clean()
	if c.Device == "" {
		return errcode.InvalidArgf("check-in has no device")
	}
	f, err := s.file(app)
	if err != nil {
		return err
	}

	l := s.lock(app)
	l.Lock()
	defer l.Unlock()

	bs, err := readIfExist(f)
	if err != nil {
		return errcode.Annotate(err, "read stats file")
	}
	return s.writeFile(f, Merge(bs, c))
}

// List returns all check-ins of an app. Malformed lines are skipped
// and logged.
func (s *FileStore) List(app string) ([]*CheckIn, error) {
	f, err := s.file(app)
	if err != nil {
		return nil, err
	}
	bs, err := readIfExist(f)
	if err != nil {
		return nil, errcode.Annotate(err, "read stats file")
	}
	list, bad := Parse(bs)
	if bad > 0 {
		log.Printf("stats of %q: skipped %d malformed lines", app, bad)
	}
	return list, nil
}

// Get returns the check-in of a device.
func (s *FileStore) Get(app, device string) (*CheckIn, error) {
	list, err := s.List(app)
	if err != nil {
		return nil, err
	}
	return findDevice(list, app, device)
}
