// Package sse streams page and graph change notifications to HTTP clients
// as server-sent events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event kinds.
const (
	TypePageSaved    = "page.saved"
	TypePageDeleted  = "page.deleted"
	TypeGraphUpdated = "graph.updated"
)

const (
	heartbeatInterval = 30 * time.Second
	// clientBuffer is also the replay depth, so a replay never blocks.
	clientBuffer = 64
)

// Event is one notification; Data is sent as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type message struct {
	seq uint64
	raw []byte
}

type subscription struct {
	ch    chan []byte
	after uint64
}

type pageChange struct {
	kind   string
	pageID string
}

// Broker fans events out to subscribers.
//
// One goroutine owns the subscriber set, the sequence counter, the replay
// buffer and the graph throttle. Exported methods talk to it over channels.
type Broker struct {
	graphMin time.Duration

	join   chan subscription
	leave  chan chan []byte
	events chan Event
	pages  chan pageChange
	count  chan chan int

	stop   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker starts a broker. graph.updated is emitted at most once per
// graphThrottle; non-positive values mean two seconds.
func NewBroker(graphThrottle time.Duration) *Broker {
	if graphThrottle <= 0 {
		graphThrottle = 2 * time.Second
	}
	b := &Broker{
		graphMin: graphThrottle,
		join:     make(chan subscription),
		leave:    make(chan chan []byte),
		events:   make(chan Event, 256),
		pages:    make(chan pageChange, 256),
		count:    make(chan chan int),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go b.loop()
	return b
}

// hub is the state owned by the loop goroutine.
type hub struct {
	clients   map[chan []byte]struct{}
	seq       uint64
	recent    []message
	lastGraph time.Time
}

func (h *hub) publish(e Event) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return
	}
	h.seq++
	msg := message{
		seq: h.seq,
		raw: fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", h.seq, e.Type, payload),
	}
	if len(h.recent) == clientBuffer {
		h.recent = h.recent[1:]
	}
	h.recent = append(h.recent, msg)

	for ch := range h.clients {
		select {
		case ch <- msg.raw:
		default:
			// slow client, drop
		}
	}
}

func (h *hub) add(sub subscription) {
	h.clients[sub.ch] = struct{}{}
	if sub.after == 0 {
		return
	}
	for _, msg := range h.recent {
		if msg.seq > sub.after {
			sub.ch <- msg.raw
		}
	}
}

func (h *hub) remove(ch chan []byte) {
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *hub) pageChanged(c pageChange, graphMin time.Duration) {
	if c.kind != TypePageSaved && c.kind != TypePageDeleted {
		return
	}
	h.publish(Event{Type: c.kind, Data: map[string]string{"id": c.pageID}})

	if now := time.Now(); now.Sub(h.lastGraph) >= graphMin {
		h.lastGraph = now
		h.publish(Event{Type: TypeGraphUpdated, Data: map[string]string{}})
	}
}

func (b *Broker) loop() {
	defer close(b.done)

	h := &hub{clients: make(map[chan []byte]struct{})}
	for {
		select {
		case <-b.stop:
			for ch := range h.clients {
				close(ch)
			}
			return
		case sub := <-b.join:
			h.add(sub)
		case ch := <-b.leave:
			h.remove(ch)
		case e := <-b.events:
			h.publish(e)
		case c := <-b.pages:
			h.pageChanged(c, b.graphMin)
		case resp := <-b.count:
			resp <- len(h.clients)
		}
	}
}

// Close stops the loop and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.done
}

// Subscribe registers a client for new events.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeAfter(0)
}

// SubscribeAfter registers a client and first replays the buffered events
// whose id is greater than lastID. Zero replays nothing.
func (b *Broker) SubscribeAfter(lastID uint64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- subscription{ch: ch, after: lastID}:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.done:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.done:
		return 0
	}
}

// Publish broadcasts an arbitrary event.
func (b *Broker) Publish(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- e:
	case <-b.done:
	}
}

// PublishPageEvent broadcasts a page change followed, at most once per
// throttle interval, by graph.updated. Unknown kinds are dropped.
func (b *Broker) PublishPageEvent(kind, pageID string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.pages <- pageChange{kind: kind, pageID: pageID}:
	case <-b.done:
	}
}

// ServeHTTP streams events to one client. A Last-Event-ID header resumes
// from the replay buffer.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeAfter(lastID)
	defer b.Unsubscribe(ch)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
		}
		flusher.Flush()
	}
}
