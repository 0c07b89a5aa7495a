package response

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func textResponse(texts ...string) ModelResponse {
	resp := ModelResponse{}
	for _, t := range texts {
		resp.Content = append(resp.Content, ContentItem{Type: "text", Text: t})
	}
	return resp
}

func TestParseJSONResponse_WrongBlockCount(t *testing.T) {
	for _, resp := range []ModelResponse{textResponse(), textResponse(`{"a":1}`, `{"b":2}`)} {
		payload, ok, err := ParseJSONResponse(resp)
		if ok || payload != nil || err != nil {
			t.Errorf("Expected absent result for %d blocks, got (%v, %v, %v)", len(resp.Content), payload, ok, err)
		}
		payload, ok, err = ParseXMLResponse(resp)
		if ok || payload != nil || err != nil {
			t.Errorf("Expected absent XML result for %d blocks, got (%v, %v, %v)", len(resp.Content), payload, ok, err)
		}
	}
}

func TestParseJSONResponse_Fenced(t *testing.T) {
	payload, ok, err := ParseJSONResponse(textResponse("```json\n{\"a\":1}\n```"))
	if err != nil || !ok {
		t.Fatalf("Expected a payload, got ok=%v err=%v", ok, err)
	}
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("Expected %v, got %v", want, payload)
	}
}

func TestParseJSONResponse_UsesLastFence(t *testing.T) {
	text := "first try:\n```json\n{\"a\":1}\n```\nfixed:\n```json\n[1,2]\n```\ndone"
	payload, _, err := ParseJSONResponse(textResponse(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{float64(1), float64(2)}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("Expected %v, got %v", want, payload)
	}
}

func TestParseXMLResponse_Canvas(t *testing.T) {
	payload, ok, err := ParseXMLResponse(textResponse("<canvas>\n{\"a\":1}\n</canvas>"))
	if err != nil || !ok {
		t.Fatalf("Expected a payload, got ok=%v err=%v", ok, err)
	}
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(payload, want) {
		t.Errorf("Expected %v, got %v", want, payload)
	}
}

func TestParsers_BareJSON(t *testing.T) {
	text := `{"nodes":[],"edges":[]}`
	want := map[string]any{"nodes": []any{}, "edges": []any{}}

	for name, fn := range map[string]func(ModelResponse) (any, bool, error){
		"json": ParseJSONResponse,
		"xml":  ParseXMLResponse,
	} {
		payload, ok, err := fn(textResponse(text))
		if err != nil || !ok {
			t.Fatalf("%s: expected payload, got ok=%v err=%v", name, ok, err)
		}
		if !reflect.DeepEqual(payload, want) {
			t.Errorf("%s: expected %v, got %v", name, want, payload)
		}
	}
}

func TestParseXMLResponse_MissingCloseTag(t *testing.T) {
	payload, ok, err := ParseXMLResponse(textResponse("Here it is:\n<canvas>\n{\"a\":1}\n"))
	if err != nil || !ok {
		t.Fatalf("Expected a payload, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(payload, map[string]any{"a": float64(1)}) {
		t.Errorf("Unexpected payload %v", payload)
	}
}

func TestParseJSONResponse_SyntaxError(t *testing.T) {
	_, ok, err := ParseJSONResponse(textResponse("```json\n{not json}\n```"))
	if !ok {
		t.Error("Expected ok=true for a single-block response")
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("Expected *json.SyntaxError, got %v", err)
	}
}

func TestDecodeXMLResponse_Typed(t *testing.T) {
	var v struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	ok, err := DecodeXMLResponse(textResponse(`<canvas>{"nodes":[{"id":"n1"}]}</canvas>`), &v)
	if err != nil || !ok {
		t.Fatalf("Expected decode, got ok=%v err=%v", ok, err)
	}
	if len(v.Nodes) != 1 || v.Nodes[0].ID != "n1" {
		t.Errorf("Unexpected decoded value %+v", v)
	}
}

func TestDecodeJSONResponse_Absent(t *testing.T) {
	var v map[string]any
	ok, err := DecodeJSONResponse(textResponse(), &v)
	if ok || err != nil {
		t.Errorf("Expected absent result, got ok=%v err=%v", ok, err)
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		fn   func(string) string
		want string
	}{
		{"no markers", "plain", ExtractJSON, "plain"},
		{"json fence", "x```json\nA\n```y", ExtractJSON, "\nA\n"},
		{"canvas tags", "<canvas>B</canvas>", ExtractCanvas, "B"},
		{"last canvas wins", "<canvas>A</canvas><canvas>B</canvas>", ExtractCanvas, "B"},
		{"close only", "A</canvas>", ExtractCanvas, "A</canvas>"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}
