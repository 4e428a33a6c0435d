// internal/app/broker/rooms.go
package broker

import "sync"

// registry maps session ids to live rooms. Each room carries its own
// lock so fan-out in one room never blocks subscribe or broadcast in
// another; the registry lock only guards the map itself.
//
// Lock order is always registry.mu before room.mu. Broadcast takes
// room.mu alone.
type registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func newRegistry() *registry {
	return &registry{rooms: make(map[string]*room)}
}

// join inserts c into the room named id, creating the room on first
// subscribe. Lookup and insertion happen under the registry lock so a
// concurrent remove cannot drop the room between the two steps and
// strand the new member in an orphaned membership set.
func (g *registry) join(id string, c *Client) *room {
	g.mu.Lock()
	defer g.mu.Unlock()
	rm, ok := g.rooms[id]
	if !ok {
		rm = &room{id: id, members: make(map[*Client]struct{})}
		g.rooms[id] = rm
	}
	rm.mu.Lock()
	rm.members[c] = struct{}{}
	rm.mu.Unlock()
	return rm
}

// remove drops c from the room named id and deletes the room once its
// last member leaves.
func (g *registry) remove(id string, c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	rm, ok := g.rooms[id]
	if !ok {
		return
	}
	rm.mu.Lock()
	delete(rm.members, c)
	empty := len(rm.members) == 0
	rm.mu.Unlock()
	if empty {
		delete(g.rooms, id)
	}
}

// memberCount reports the current size of a room's membership set.
func (g *registry) memberCount(id string) int {
	g.mu.Lock()
	rm, ok := g.rooms[id]
	g.mu.Unlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.members)
}

// room is one broadcast group, keyed by session id.
type room struct {
	id      string
	mu      sync.Mutex
	members map[*Client]struct{}
}

// broadcast delivers raw to every current member, including the
// sender. The membership set is walked under the room lock so a frame
// never reaches a connection mid-teardown and never skips one that
// subscribed a moment before. A member whose outbound buffer is full
// is kicked rather than allowed to stall the room.
func (rm *room) broadcast(raw []byte) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for c := range rm.members {
		if !c.enqueue(raw) {
			delete(rm.members, c)
			c.kick()
		}
	}
}
