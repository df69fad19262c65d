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

package livefeed

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"shanhu.io/aries"
)

const writeTimeout = 10 * time.Second

var upgrader = &websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// Dashboards may be served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request to a websocket and streams check-in
// events as JSON messages until the client goes away.
func (h *Hub) ServeWS(c *aries.C) error {
	// Subscribe before the handshake completes, so that a client sees
	// every event published after its dial returns.
	events, cancel := h.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(c.Resp, c.Req, nil)
	if err != nil {
		// Upgrade already replied with an error.
		log.Println("live feed upgrade: ", err)
		return nil
	}
	defer conn.Close()

	// Incoming messages are ignored; reading detects the close.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return nil
			}
		case <-gone:
			return nil
		}
	}
}
