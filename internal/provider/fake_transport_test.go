package provider

import (
	"bytes"
	"io"
	"net/http"
	"strings"
)

type capture struct {
	url  string
	body []byte
}

// sseTransport answers every request with a fixed event-stream body.
type sseTransport struct {
	status   int
	body     string
	captured *capture
}

func (f *sseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if f.captured != nil {
		f.captured.url = req.URL.String()
		f.captured.body = b
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(f.body))),
		Header:     make(http.Header),
		Request:    req,
	}
	if status == http.StatusOK {
		resp.Header.Set("Content-Type", "text/event-stream")
	} else {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp, nil
}

// sse joins data-only events the way OpenAI frames them.
func sse(events ...string) string {
	var b strings.Builder
	for _, e := range events {
		b.WriteString("data: ")
		b.WriteString(e)
		b.WriteString("\n\n")
	}
	return b.String()
}

// namedSSE frames events as (name, data) pairs the way Anthropic does.
func namedSSE(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString("event: ")
		b.WriteString(pairs[i])
		b.WriteString("\ndata: ")
		b.WriteString(pairs[i+1])
		b.WriteString("\n\n")
	}
	return b.String()
}

func newTestProvider(name string, rt http.RoundTripper) Provider {
	p, err := New(Options{Name: name, APIKey: "test-key", HTTPClient: &http.Client{Transport: rt}, MaxRetries: 0})
	if err != nil {
		panic(err)
	}
	return p
}
