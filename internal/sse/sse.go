// Package sse writes data-only server-sent events.
package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
)

var ErrFlushUnsupported = errors.New("response writer does not support flushing")

// Writer frames each payload as "data: <json>\n\n" and flushes immediately.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	mu      sync.Mutex
	started bool
}

func New(w http.ResponseWriter) (*Writer, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrFlushUnsupported
	}
	return &Writer{w: w, flusher: f}, nil
}

// start writes the stream headers. Proxies must not buffer the response.
func (sw *Writer) start() {
	if sw.started {
		return
	}
	sw.started = true
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	sw.w.WriteHeader(http.StatusOK)
}

// Start commits the response headers without sending an event.
func (sw *Writer) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.start()
	sw.flusher.Flush()
}

// Send encodes data as JSON, without HTML escaping, and writes one event.
func (sw *Writer) Send(data any) error {
	var buf bytes.Buffer
	buf.WriteString("data: ")
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return err
	}
	// Encode appends one newline; the blank line terminates the event.
	buf.WriteByte('\n')

	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.start()
	if _, err := sw.w.Write(buf.Bytes()); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}
