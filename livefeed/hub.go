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

// Package livefeed broadcasts device check-ins to connected dashboards
// over websockets.
package livefeed

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"shanhu.io/appdist/stats"
)

// Event is a check-in broadcast to subscribers.
type Event struct {
	ID      string
	App     string
	CheckIn *stats.CheckIn
}

const subscriberBuffer = 16

type subscriber struct {
	events  chan *Event
	dropped int
}

// Hub fans out check-in events to subscribers. A subscriber that does
// not keep up loses events instead of blocking the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]bool)}
}

// CheckedIn publishes a check-in to all subscribers.
func (h *Hub) CheckedIn(app string, c *stats.CheckIn) {
	cp := *c
	ev := &Event{
		ID:      uuid.NewString(),
		App:     app,
		CheckIn: &cp,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.events <- ev:
		default:
			sub.dropped++
		}
	}
}

// Subscribe registers a new subscriber. The returned function cancels
// the subscription and closes the channel.
func (h *Hub) Subscribe() (<-chan *Event, func()) {
	sub := &subscriber{events: make(chan *Event, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = true
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			dropped := sub.dropped
			h.mu.Unlock()
			close(sub.events)
			if dropped > 0 {
				log.Printf("live feed subscriber dropped %d events", dropped)
			}
		})
	}
	return sub.events, cancel
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
