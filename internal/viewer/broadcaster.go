// Package viewer streams designers' editor frames to browser or tool
// subscribers over websockets.
package viewer

import (
	"cmp"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"MudraBuilder/internal/builder"
)

// Event types carried on the feed.
const (
	EventHello     = "hello"
	EventMap       = "map"
	EventSelection = "selection"
	EventStatus    = "status"
	EventNotice    = "notice"
)

// Event is one frame on the feed.
type Event struct {
	Seq      uint64          `json:"seq"`
	Type     string          `json:"type"`
	Designer string          `json:"designer,omitempty"`
	Session  string          `json:"session,omitempty"`
	Time     time.Time       `json:"time"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

const subscriberBuffer = 32

// Broadcaster fans events out to subscribers and remembers each session's
// latest map so late subscribers can catch up. A designer may hold several
// sessions at once.
type Broadcaster struct {
	mu   sync.Mutex
	seq  uint64
	subs map[chan Event]struct{}
	maps map[string]Event // by session
	now  func() time.Time
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan Event]struct{}),
		maps: make(map[string]Event),
		now:  time.Now,
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers reports how many feeds are attached.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Publish stamps and delivers an event from one designer session to all
// subscribers.
func (b *Broadcaster) Publish(designer, session, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	ev := Event{Seq: b.seq, Type: kind, Designer: designer, Session: session, Time: b.now().UTC(), Payload: data}
	if kind == EventMap && session != "" {
		b.maps[session] = ev
	}
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Lagging subscribers drop frames; the next map frame catches them up.
		}
	}
	return nil
}

// Forget drops a session's cached map once it ends.
func (b *Broadcaster) Forget(session string) {
	b.mu.Lock()
	delete(b.maps, session)
	b.mu.Unlock()
}

// Frames returns every session's cached map, oldest first.
func (b *Broadcaster) Frames() []Event {
	b.mu.Lock()
	out := make([]Event, 0, len(b.maps))
	for _, ev := range b.maps {
		out = append(out, ev)
	}
	b.mu.Unlock()
	slices.SortFunc(out, func(a, c Event) int { return cmp.Compare(a.Seq, c.Seq) })
	return out
}

// Latest returns the newest map frame for every designer across their
// sessions.
func (b *Broadcaster) Latest() map[string]Event {
	out := make(map[string]Event)
	for _, ev := range b.Frames() {
		out[ev.Designer] = ev
	}
	return out
}

// Hooks publishes one designer session's editor render calls on b.
type Hooks struct {
	b        *Broadcaster
	designer string
	session  string
}

// HooksFor returns render hooks for a new session publishing under
// designer's name.
func (b *Broadcaster) HooksFor(designer string) *Hooks {
	return &Hooks{b: b, designer: designer, session: uuid.NewString()}
}

// Session identifies the hooks' session on the feed.
func (h *Hooks) Session() string {
	return h.session
}

var _ builder.Hooks = (*Hooks)(nil)

func (h *Hooks) RedrawMap(view builder.MapView) {
	_ = h.b.Publish(h.designer, h.session, EventMap, view)
}

func (h *Hooks) RefreshSelection(view builder.SelectionView) {
	_ = h.b.Publish(h.designer, h.session, EventSelection, view)
}

func (h *Hooks) UpdateStatus(status string) {
	_ = h.b.Publish(h.designer, h.session, EventStatus, status)
}

func (h *Hooks) Notify(n builder.Notice) {
	_ = h.b.Publish(h.designer, h.session, EventNotice, n)
}

// Close forgets this session's cached map. Other sessions of the same
// designer keep theirs.
func (h *Hooks) Close() error {
	h.b.Forget(h.session)
	return nil
}
