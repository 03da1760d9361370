package domain

import "testing"

func TestHeadersFromSortsByName(t *testing.T) {
	hs := HeadersFrom(map[string][]string{
		"X-Session-Token": {"tok-1"},
		"Accept":          {"application/json", "text/html"},
		"Content-Type":    {"application/json"},
	})

	want := []Header{
		{Name: "Accept", Value: "application/json"},
		{Name: "Accept", Value: "text/html"},
		{Name: "Content-Type", Value: "application/json"},
		{Name: "X-Session-Token", Value: "tok-1"},
	}
	if len(hs) != len(want) {
		t.Fatalf("got %d headers, want %d", len(hs), len(want))
	}
	for i := range want {
		if hs[i] != want[i] {
			t.Errorf("hs[%d] = %+v, want %+v", i, hs[i], want[i])
		}
	}
}

func TestHeaderMapRoundTrip(t *testing.T) {
	in := map[string][]string{
		"Accept":       {"application/json", "text/html"},
		"Content-Type": {"application/json"},
	}
	out := HeaderMap(HeadersFrom(in))

	for name, values := range in {
		got := out[name]
		if len(got) != len(values) {
			t.Fatalf("%s: got %v, want %v", name, got, values)
		}
		for i := range values {
			if got[i] != values[i] {
				t.Errorf("%s[%d] = %q, want %q", name, i, got[i], values[i])
			}
		}
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	hs := []Header{{Name: "Content-Type", Value: "application/json"}}

	if got := HeaderValue(hs, "content-type"); got != "application/json" {
		t.Errorf("HeaderValue = %q", got)
	}
	if got := HeaderValue(hs, "Authorization"); got != "" {
		t.Errorf("HeaderValue for absent name = %q, want empty", got)
	}
}

func TestResponseCloneIsDeep(t *testing.T) {
	orig := &Response{
		Status:  200,
		Headers: []Header{{Name: "Content-Type", Value: "application/json"}},
		Body:    []byte("original"),
	}

	clone := orig.Clone()
	clone.Body[0] = 'X'
	clone.Headers[0].Value = "text/plain"

	if string(orig.Body) != "original" {
		t.Error("clone shares the body slice")
	}
	if orig.Headers[0].Value != "application/json" {
		t.Error("clone shares the headers slice")
	}

	var nilResp *Response
	if nilResp.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestMarkCacheSourced(t *testing.T) {
	orig := &Response{Status: 200, Body: []byte(`[]`)}

	marked := orig.MarkCacheSourced()
	if !marked.CacheSourced() {
		t.Error("marked response not flagged")
	}
	if orig.CacheSourced() {
		t.Error("marking must not mutate the original")
	}
}

func TestNoticeFor(t *testing.T) {
	n := NoticeFor(SyncOutcome{Key: 1700000000000, URL: "/api/transfer", Succeeded: true})

	if n.Type != NoticeSyncSuccess {
		t.Errorf("Type = %q", n.Type)
	}
	if n.URL != "/api/transfer" || n.Timestamp != 1700000000000 {
		t.Errorf("notice = %+v", n)
	}
}
