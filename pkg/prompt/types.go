package prompt

import (
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type BlockKind string

const (
	KindImage BlockKind = "image"
	KindText  BlockKind = "text"
)

// ContentBlock is one unit of turn content: an image (MediaType + Data) or a
// text (Text). Only the fields of its Kind are meaningful.
type ContentBlock struct {
	Kind      BlockKind
	MediaType string
	Data      string // base64-encoded image bytes
	Text      string
}

func ImageBlock(mediaType, data string) ContentBlock {
	return ContentBlock{Kind: KindImage, MediaType: mediaType, Data: data}
}

func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: KindText, Text: text}
}

type Turn struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// MessageList is the ordered conversation sent as the request's messages.
type MessageList []Turn

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type wireBlock struct {
	Type   string       `json:"type"`
	Source *imageSource `json:"source,omitempty"`
	Text   *string      `json:"text,omitempty"`
}

// MarshalJSON writes the block in the Messages API content shape.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Kind {
	case KindImage:
		return json.Marshal(wireBlock{
			Type:   string(KindImage),
			Source: &imageSource{Type: "base64", MediaType: b.MediaType, Data: b.Data},
		})
	case KindText:
		text := b.Text
		return json.Marshal(wireBlock{Type: string(KindText), Text: &text})
	default:
		return nil, fmt.Errorf("unknown content block kind %q", b.Kind)
	}
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch BlockKind(w.Type) {
	case KindImage:
		if w.Source == nil {
			return fmt.Errorf("image block without source")
		}
		*b = ImageBlock(w.Source.MediaType, w.Source.Data)
	case KindText:
		var text string
		if w.Text != nil {
			text = *w.Text
		}
		*b = TextBlock(text)
	default:
		return fmt.Errorf("unknown content block type %q", w.Type)
	}
	return nil
}
