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

package delivery

import (
	"crypto/sha256"
	"encoding/base32"
	"log"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"shanhu.io/appdist/distapi"
	"shanhu.io/misc/errcode"
)

var authCodeOpts = totp.ValidateOpts{
	Period:    30,
	Digits:    otp.DigitsEight,
	Algorithm: otp.AlgorithmSHA1,
}

func deviceSecret(secret, device string) string {
	sum := sha256.Sum256([]byte(secret + ":" + device))
	return base32.StdEncoding.EncodeToString(sum[:])
}

// AuthCode returns the auth code of a device at time t. The code is a
// time-based one-time password keyed by the server secret and the
// device identity.
func AuthCode(secret, device string, t time.Time) (string, error) {
	if secret == "" || device == "" {
		return "", errcode.InvalidArgf("secret and device required")
	}
	return totp.GenerateCodeCustom(deviceSecret(secret, device), t, authCodeOpts)
}

// ValidateAuthCode checks an auth code of a device at time t, allowing
// one period of clock skew.
func ValidateAuthCode(secret, device, code string, t time.Time) bool {
	if secret == "" || device == "" {
		return false
	}
	opts := authCodeOpts
	opts.Skew = 1
	ok, err := totp.ValidateCustom(code, deviceSecret(secret, device), t, opts)
	return err == nil && ok
}

func (e *Engine) authorize(req distapi.Request, allowed bool) *distapi.AuthResponse {
	failed := &distapi.AuthResponse{AuthCode: distapi.AuthFailed}
	if !allowed || e.authSecret == "" || req.Device == "" {
		return failed
	}
	code, err := AuthCode(e.authSecret, req.Device, e.now())
	if err != nil {
		log.Printf("generate auth code for %q: %s", req.BundleID, err)
		return failed
	}
	return &distapi.AuthResponse{AuthCode: code}
}
