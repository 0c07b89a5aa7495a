package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContentItem is one block of a model answer. Non-text blocks have an empty
// Text.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ModelResponse is the part of a model answer the parsers look at.
type ModelResponse struct {
	Content []ContentItem `json:"content"`
}

const (
	jsonOpen    = "```json"
	jsonClose   = "```"
	canvasOpen  = "<canvas>"
	canvasClose = "</canvas>"
)

// ParseJSONResponse decodes the payload of a single-block answer, optionally
// fenced as ```json ... ```. ok is false when the answer does not carry
// exactly one block; that is not an error.
func ParseJSONResponse(resp ModelResponse) (payload any, ok bool, err error) {
	return parse(resp, jsonOpen, jsonClose)
}

// ParseXMLResponse is ParseJSONResponse for payloads framed as
// <canvas> ... </canvas>. The framed text is still JSON.
func ParseXMLResponse(resp ModelResponse) (payload any, ok bool, err error) {
	return parse(resp, canvasOpen, canvasClose)
}

// DecodeJSONResponse decodes a ```json framed payload into v.
func DecodeJSONResponse(resp ModelResponse, v any) (bool, error) {
	return decode(resp, jsonOpen, jsonClose, v)
}

// DecodeXMLResponse decodes a <canvas> framed payload into v.
func DecodeXMLResponse(resp ModelResponse, v any) (bool, error) {
	return decode(resp, canvasOpen, canvasClose, v)
}

// ExtractJSON strips ```json framing from text.
func ExtractJSON(text string) string {
	return extract(text, jsonOpen, jsonClose)
}

// ExtractCanvas strips <canvas> framing from text.
func ExtractCanvas(text string) string {
	return extract(text, canvasOpen, canvasClose)
}

// SingleText returns the text of the only content block.
func SingleText(resp ModelResponse) (string, bool) {
	if len(resp.Content) != 1 {
		return "", false
	}
	return resp.Content[0].Text, true
}

func parse(resp ModelResponse, openMark, closeMark string) (any, bool, error) {
	var payload any
	ok, err := decode(resp, openMark, closeMark, &payload)
	if !ok || err != nil {
		return nil, ok, err
	}
	return payload, true, nil
}

func decode(resp ModelResponse, openMark, closeMark string, v any) (bool, error) {
	raw, ok := SingleText(resp)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(extract(raw, openMark, closeMark)), v); err != nil {
		return true, fmt.Errorf("decode model payload: %w", err)
	}
	return true, nil
}

// extract keeps the text after the last open marker, then cuts it at the
// last close marker. A missing close marker leaves the remainder intact.
func extract(text, openMark, closeMark string) string {
	i := strings.LastIndex(text, openMark)
	if i < 0 {
		return text
	}
	text = text[i+len(openMark):]
	if j := strings.LastIndex(text, closeMark); j >= 0 {
		text = text[:j]
	}
	return text
}
