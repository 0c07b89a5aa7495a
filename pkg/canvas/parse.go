package canvas

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sipeed/sketchcanvas/pkg/response"
)

// ErrNoCanvas is returned when a model answer does not consist of exactly one
// content block.
var ErrNoCanvas = errors.New("model response carries no canvas")

var (
	nodeStrings = []string{"id", "type"}
	nodeNumbers = []string{"x", "y", "width", "height"}
	edgeStrings = []string{"id", "fromNode", "fromSide", "toNode", "toSide"}
)

// Parse decodes and checks a JSON Canvas document. Every node needs string
// id/type and numeric x/y/width/height; every edge needs string
// id/fromNode/fromSide/toNode/toSide.
func Parse(data []byte) (*Canvas, error) {
	if err := check(data); err != nil {
		return nil, fmt.Errorf("failed to parse canvas: %w", err)
	}
	var c Canvas
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse canvas: %w", err)
	}
	return &c, nil
}

// FromResponse extracts the <canvas> framed document from a model answer.
func FromResponse(resp response.ModelResponse) (*Canvas, error) {
	text, ok := response.SingleText(resp)
	if !ok {
		return nil, ErrNoCanvas
	}
	return Parse([]byte(response.ExtractCanvas(text)))
}

func check(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		return errors.New("invalid JSON structure: expected an object")
	}

	var nodes, edges []map[string]any
	if err := json.Unmarshal(doc["nodes"], &nodes); err != nil || nodes == nil {
		return errors.New("invalid canvas structure: missing nodes or edges array")
	}
	if err := json.Unmarshal(doc["edges"], &edges); err != nil || edges == nil {
		return errors.New("invalid canvas structure: missing nodes or edges array")
	}

	for i, n := range nodes {
		if !hasStrings(n, nodeStrings) || !hasNumbers(n, nodeNumbers) {
			return fmt.Errorf("invalid node at index %d: missing or invalid required properties", i)
		}
	}
	for i, e := range edges {
		if !hasStrings(e, edgeStrings) {
			return fmt.Errorf("invalid edge at index %d: missing or invalid required properties", i)
		}
	}
	return nil
}

func hasStrings(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k].(string); !ok {
			return false
		}
	}
	return true
}

func hasNumbers(m map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := m[k].(float64); !ok {
			return false
		}
	}
	return true
}
