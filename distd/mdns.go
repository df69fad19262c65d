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
	"log"
	"net"
	"strconv"

	"github.com/hashicorp/mdns"
	"shanhu.io/misc/errcode"
)

const mdnsService = "_appdist._tcp"

// advertise announces the server on the local network. The returned
// server must be shut down by the caller.
func advertise(instance, addr string) (*mdns.Server, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, errcode.Annotate(err, "split listen address")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errcode.InvalidArgf("invalid port %q", portStr)
	}

	service, err := mdns.NewMDNSService(
		instance,
		mdnsService,
		"local.",
		"", // hostname
		port,
		nil, // ips, looked up from hostname
		[]string{"app distribution"},
	)
	if err != nil {
		return nil, errcode.Annotate(err, "make mDNS service")
	}

	s, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, errcode.Annotate(err, "make mDNS server")
	}
	log.Printf("mdns: advertising %q on port %d", instance, port)
	return s, nil
}
