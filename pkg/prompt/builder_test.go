package prompt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeImage(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildMessageList(t *testing.T) {
	path := writeImage(t, "sketch.png", []byte("png-bytes"))

	list, err := BuildMessageList(path, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 turn, got %d", len(list))
	}
	turn := list[0]
	if turn.Role != RoleUser {
		t.Errorf("Expected role 'user', got '%s'", turn.Role)
	}
	if len(turn.Content) != 2 {
		t.Fatalf("Expected 2 content blocks, got %d", len(turn.Content))
	}
	img, text := turn.Content[0], turn.Content[1]
	if img.Kind != KindImage || img.MediaType != "image/png" {
		t.Errorf("Expected first block to be a PNG image, got %+v", img)
	}
	if img.Data != base64.StdEncoding.EncodeToString([]byte("png-bytes")) {
		t.Errorf("Unexpected image data '%s'", img.Data)
	}
	if text.Kind != KindText || text.Text != "hello" {
		t.Errorf("Expected text block 'hello', got %+v", text)
	}
}

func TestBuildMessageList_AlwaysPNG(t *testing.T) {
	path := writeImage(t, "photo.jpg", []byte{0xff, 0xd8, 0xff})

	list, err := BuildMessageList(path, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list[0].Content[0].MediaType != "image/png" {
		t.Errorf("Expected media type 'image/png', got '%s'", list[0].Content[0].MediaType)
	}
}

func TestBuildMessageList_MissingImage(t *testing.T) {
	_, err := BuildMessageList(filepath.Join(t.TempDir(), "nope.png"), "hello")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestBuildFewShotMessageList(t *testing.T) {
	target := writeImage(t, "target.png", []byte("target"))
	example := writeImage(t, "example.png", []byte("example"))

	list, err := BuildFewShotMessageList(target, example, "note1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(list))
	}

	wantRoles := []Role{RoleUser, RoleAssistant, RoleUser}
	for i, want := range wantRoles {
		if list[i].Role != want {
			t.Errorf("turn %d: expected role '%s', got '%s'", i, want, list[i].Role)
		}
	}

	if got := list[0].Content[0].Data; got != base64.StdEncoding.EncodeToString([]byte("example")) {
		t.Errorf("Expected first turn to carry the example image, got '%s'", got)
	}
	if got := list[2].Content[0].Data; got != base64.StdEncoding.EncodeToString([]byte("target")) {
		t.Errorf("Expected last turn to carry the target image, got '%s'", got)
	}
	for _, i := range []int{0, 2} {
		if got := list[i].Content[1].Text; got != FewShotInstruction {
			t.Errorf("turn %d: expected instruction '%s', got '%s'", i, FewShotInstruction, got)
		}
	}

	assistant := list[1].Content
	if len(assistant) != 1 || assistant[0].Kind != KindText {
		t.Fatalf("Expected a single text block in the assistant turn, got %+v", assistant)
	}
	if assistant[0].Text != "<canvas>\nnote1\n</canvas>" {
		t.Errorf("Unexpected assistant text %q", assistant[0].Text)
	}
}

func TestBuildFewShotMessageList_MissingExample(t *testing.T) {
	target := writeImage(t, "target.png", []byte("target"))
	if _, err := BuildFewShotMessageList(target, filepath.Join(t.TempDir(), "x.png"), "{}"); err == nil {
		t.Error("Expected error for missing example image")
	}
}

func TestMessageListJSON(t *testing.T) {
	list := BuildEncodedMessageList("QUJD", "hello")

	data, err := json.Marshal(list)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"role":"user","content":[{"type":"image","source":{"type":"base64","media_type":"image/png","data":"QUJD"}},{"type":"text","text":"hello"}]}]`
	if string(data) != want {
		t.Errorf("Unexpected JSON:\n got  %s\n want %s", data, want)
	}

	var back MessageList
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back[0].Content[0] != list[0].Content[0] || back[0].Content[1] != list[0].Content[1] {
		t.Errorf("Expected decoded blocks to match, got %+v", back[0].Content)
	}
}

func TestContentBlockUnknownKind(t *testing.T) {
	if _, err := json.Marshal(ContentBlock{Kind: "audio"}); err == nil {
		t.Error("Expected error for unknown block kind")
	}
	var b ContentBlock
	if err := json.Unmarshal([]byte(`{"type":"audio"}`), &b); err == nil {
		t.Error("Expected error for unknown block type")
	}
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"cannoli":   ModeCannoli,
		"Variables": ModeVariables,
		"default":   ModeDefault,
		"":          ModeDefault,
		"bogus":     ModeDefault,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSystemPrompt(t *testing.T) {
	for _, mode := range []Mode{ModeDefault, ModeCannoli, ModeVariables} {
		p := SystemPrompt(mode)
		if !strings.Contains(p, "<canvas>") || !strings.Contains(p, "</canvas>") {
			t.Errorf("mode %s: expected canvas example in system prompt", mode)
		}
	}
	if !strings.Contains(SystemPrompt(ModeCannoli), "<colors>") {
		t.Error("Expected cannoli prompt to list colors")
	}
	if SystemPrompt("unknown") != SystemPrompt(ModeDefault) {
		t.Error("Expected unknown mode to use the default prompt")
	}
}
