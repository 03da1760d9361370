package domain

// Response is a fully-read HTTP response. Reading the body eagerly makes
// cloning trivial: the same response can be stored in a cache partition and
// returned to the caller without worrying about single-read streams.
type Response struct {
	Status  int      `json:"status"`
	Headers []Header `json:"headers"`
	Body    []byte   `json:"body"`
}

// CacheSourcedHeader marks a response that was served from a cache partition
// as a fallback, so the client can distinguish live from stale data.
const CacheSourcedHeader = "X-Offlinegate-Cache"

// Clone returns a deep copy of the response. Strategies store a clone and
// return the original so neither side can observe the other's mutations.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := &Response{Status: r.Status}
	if r.Headers != nil {
		c.Headers = make([]Header, len(r.Headers))
		copy(c.Headers, r.Headers)
	}
	if r.Body != nil {
		c.Body = make([]byte, len(r.Body))
		copy(c.Body, r.Body)
	}
	return c
}

// CacheSourced reports whether the response carries the cache-fallback mark.
func (r *Response) CacheSourced() bool {
	return HeaderValue(r.Headers, CacheSourcedHeader) != ""
}

// MarkCacheSourced returns a clone flagged as served-from-cache.
func (r *Response) MarkCacheSourced() *Response {
	c := r.Clone()
	c.Headers = append(c.Headers, Header{Name: CacheSourcedHeader, Value: "hit"})
	return c
}
