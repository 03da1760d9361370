package domain

import (
	"sort"
	"strings"
)

// Header is a single header name/value pair. Queued requests carry headers as
// an ordered slice rather than a map so the replayed request preserves the
// exact shape captured at failure time.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// QueuedRequest is a snapshot of a mutating request that failed due to
// connectivity loss. The body is captured as a fully-read string because its
// source stream is single-read and must survive until replay.
//
// Timestamp (milliseconds since epoch) is the primary key in the durable
// queue store. Two enqueues in the same millisecond collide last-write-wins.
// A QueuedRequest is never mutated in place: it is created on failure and
// removed on confirmed successful replay.
type QueuedRequest struct {
	Timestamp int64    `json:"timestamp"`
	URL       string   `json:"url"`
	Method    string   `json:"method"`
	Headers   []Header `json:"headers"`
	Body      string   `json:"body"`
}

// HeadersFrom flattens a header map (http.Header is map[string][]string) into
// an ordered slice, sorted by name for deterministic persistence.
func HeadersFrom(h map[string][]string) []Header {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Header
	for _, name := range names {
		for _, value := range h[name] {
			out = append(out, Header{Name: name, Value: value})
		}
	}
	return out
}

// HeaderMap rebuilds a header map from the ordered slice for replay.
func HeaderMap(hs []Header) map[string][]string {
	out := make(map[string][]string, len(hs))
	for _, h := range hs {
		out[h.Name] = append(out[h.Name], h.Value)
	}
	return out
}

// HeaderValue returns the first value for name (case-insensitive), or "".
func HeaderValue(hs []Header, name string) string {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
