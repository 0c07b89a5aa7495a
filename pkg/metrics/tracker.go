package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// UsageEvent records one sketch conversion call.
type UsageEvent struct {
	Timestamp    string  `json:"ts"`
	JobID        string  `json:"job"`
	Canvas       string  `json:"canvas,omitempty"`
	Mode         string  `json:"mode"`
	Model        string  `json:"model"`
	InputTokens  int64   `json:"in"`
	OutputTokens int64   `json:"out"`
	CostUSD      float64 `json:"cost"`
	Status       string  `json:"status"`
	DurationMS   int64   `json:"duration_ms"`
}

// Tracker appends usage events to a JSONL file.
type Tracker struct {
	filePath string
	mu       sync.Mutex
}

// NewTracker creates a tracker that writes to workspace/metrics/usage.jsonl.
func NewTracker(workspace string) (*Tracker, error) {
	dir := filepath.Join(workspace, "metrics")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create metrics dir: %w", err)
	}
	return &Tracker{
		filePath: filepath.Join(dir, "usage.jsonl"),
	}, nil
}

func (t *Tracker) Path() string {
	return t.filePath
}

// Record appends an event, filling in the timestamp and cost. A nil tracker
// drops the event.
func (t *Tracker) Record(event UsageEvent) error {
	if t == nil {
		return nil
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	event.CostUSD = CalculateCost(event.Model, event.InputTokens, event.OutputTokens)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal usage event: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open usage file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write usage event: %w", err)
	}
	return nil
}

// Model pricing per million tokens (input, output).
type modelPricing struct {
	inputPerM  float64
	outputPerM float64
}

var pricing = map[string]modelPricing{
	"claude-3-opus-20240229":     {15.0, 75.0},
	"claude-3-5-sonnet-20241022": {3.0, 15.0},
	"claude-sonnet-4-5-20250929": {3.0, 15.0},
	"claude-3-haiku-20240307":    {0.25, 1.25},
	"gpt-4o":                     {2.5, 10.0},
	"gpt-4o-mini":                {0.15, 0.6},
}

// CalculateCost prices a call in USD. Unknown models are priced like Opus.
func CalculateCost(model string, input, output int64) float64 {
	p, ok := pricing[model]
	if !ok {
		p = pricing["claude-3-opus-20240229"]
	}
	return float64(input)*p.inputPerM/1e6 + float64(output)*p.outputPerM/1e6
}
