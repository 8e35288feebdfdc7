//go:build profile

// Package profiler records open/close scope events from any goroutine into
// a lock-free ring and dumps them as an evented speedscope profile.
package profiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Init must be called once before Start records anything.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 16
	}
	ring.init(capacity)
}

// Start opens a scope and returns the func that closes it.
func Start(name string) func() {
	if !ring.ready.Load() {
		return noop
	}
	id := intern(name)
	at := time.Now().UnixNano()
	ring.push(event{at: at, frame: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < at {
			end = at
		}
		ring.push(event{at: end, frame: id})
	}
}

func noop() {}

type event struct {
	at    int64
	frame int
	open  bool
}

type eventRing struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	evs   []event
}

var ring eventRing

func (r *eventRing) init(capacity int) {
	r.size = uint64(capacity)
	r.evs = make([]event, capacity)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *eventRing) push(e event) {
	i := r.next.Add(1) - 1
	r.evs[i%r.size] = e
}

// snapshot returns the retained events in write order.
func (r *eventRing) snapshot() []event {
	n := r.next.Load()
	start := uint64(0)
	if n > r.size {
		start = n - r.size
	}
	out := make([]event, 0, n-start)
	for i := start; i < n; i++ {
		out = append(out, r.evs[i%r.size])
	}
	return out
}

var (
	namesMu sync.Mutex
	names   []string
	ids     = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := ids[name]; ok {
		return id
	}
	ids[name] = len(names)
	names = append(names, name)
	return len(names) - 1
}

type speedscope struct {
	Schema string `json:"$schema"`
	Shared struct {
		Frames []frameName `json:"frames"`
	} `json:"shared"`
	Profiles []profile `json:"profiles"`
	Exporter string    `json:"exporter,omitempty"`
}

type frameName struct {
	Name string `json:"name"`
}

type profile struct {
	Type       string       `json:"type"`
	Name       string       `json:"name"`
	Unit       string       `json:"unit"`
	StartValue int64        `json:"startValue"`
	EndValue   int64        `json:"endValue"`
	Events     []scopeEvent `json:"events"`
}

type scopeEvent struct {
	Type  string `json:"type"` // "O" or "C"
	At    int64  `json:"at"`   // microseconds since the first event
	Frame int    `json:"frame"`
}

// Dump writes the recorded scopes to path. Scopes from several goroutines
// interleave in the ring; closes that do not match the innermost open
// scope are dropped and scopes still open at the end are closed.
func Dump(path string) error {
	evs := ring.snapshot()
	if len(evs) == 0 {
		return errors.New("profiler: no events recorded")
	}

	var doc speedscope
	doc.Schema = "https://www.speedscope.app/file-format-schema.json"
	doc.Exporter = "glfx-profiler"
	namesMu.Lock()
	for _, n := range names {
		doc.Shared.Frames = append(doc.Shared.Frames, frameName{Name: n})
	}
	namesMu.Unlock()

	base := evs[0].at
	var (
		out   []scopeEvent
		stack []int
		last  int64
	)
	for _, e := range evs {
		at := max((e.at-base)/1000, last)
		if e.open {
			stack = append(stack, e.frame)
			out = append(out, scopeEvent{Type: "O", At: at, Frame: e.frame})
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != e.frame {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, scopeEvent{Type: "C", At: at, Frame: e.frame})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, scopeEvent{Type: "C", At: last, Frame: stack[i]})
	}

	doc.Profiles = []profile{{
		Type:     "evented",
		Name:     "glfx pipeline",
		Unit:     "microseconds",
		EndValue: last,
		Events:   out,
	}}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	if err := json.NewEncoder(f).Encode(&doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("profiler: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("profiler: %w", err)
	}
	return os.Rename(tmp, path)
}
