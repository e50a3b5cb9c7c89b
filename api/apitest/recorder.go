// Package apitest provides an in-memory backend for exercising api.Service
// without Firebase.
package apitest

import (
	"sync"
	"time"
)

// Call is one remote call made against the in-memory backend.
type Call struct {
	Op         string
	Collection string
	Id         string
}

// Recorder keeps the calls made against every component of a Backend and the
// failures injected into them.
type Recorder struct {
	mu       sync.Mutex
	calls    []Call
	failures map[string]error
}

// Fail makes every later call of op return err. op is "Component.Method",
// optionally suffixed with ":collection" for documents.
func (r *Recorder) Fail(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failures == nil {
		r.failures = map[string]error{}
	}
	r.failures[op] = err
}

// Heal removes an injected failure.
func (r *Recorder) Heal(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, op)
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the calls made to op.
func (r *Recorder) CallsTo(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *Recorder) record(op, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Op: op, Collection: collection, Id: id})

	if err, ok := r.failures[op+":"+collection]; ok && collection != "" {
		return err
	}
	return r.failures[op]
}

// clock hands out strictly increasing timestamps so orderings are stable.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}
