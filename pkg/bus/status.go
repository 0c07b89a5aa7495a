package bus

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// StatusUpdate is one progress message of a conversion.
type StatusUpdate struct {
	Message string `json:"message"`
	Status  Status `json:"status"`
}

func Running(message string) StatusUpdate { return StatusUpdate{Message: message, Status: StatusRunning} }
func Success(message string) StatusUpdate { return StatusUpdate{Message: message, Status: StatusSuccess} }

// Failure reports err the way clients expect: "Error: <message>".
func Failure(err error) StatusUpdate {
	return StatusUpdate{Message: fmt.Sprintf("Error: %v", err), Status: StatusError}
}

// Final reports whether no further updates follow u.
func (u StatusUpdate) Final() bool {
	return u.Status != StatusRunning
}

// NDJSONWriter writes status updates as newline-delimited JSON. Each line is
// flushed right away when the destination supports it.
type NDJSONWriter struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{w: w}
}

// Emit writes u. After the first write error every later call is dropped;
// Err returns that error.
func (n *NDJSONWriter) Emit(u StatusUpdate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return
	}

	data, err := json.Marshal(u)
	if err != nil {
		n.err = err
		return
	}
	if _, err := n.w.Write(append(data, '\n')); err != nil {
		n.err = err
		return
	}
	if f, ok := n.w.(http.Flusher); ok {
		f.Flush()
	}
}

func (n *NDJSONWriter) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}
