package vault

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sipeed/sketchcanvas/pkg/canvas"
)

func sampleCanvas() *canvas.Canvas {
	return &canvas.Canvas{
		Nodes: []canvas.Node{{ID: "n1", Type: "text", X: 1, Y: 2, Width: 3, Height: 4, Color: canvas.ColorPurple}},
		Edges: []canvas.Edge{},
	}
}

func TestNewStore_Errors(t *testing.T) {
	if _, err := NewStore(""); !errors.Is(err, ErrNoVault) {
		t.Errorf("Expected ErrNoVault, got %v", err)
	}
	if _, err := NewStore(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing vault dir")
	}
	file := filepath.Join(t.TempDir(), "file")
	os.WriteFile(file, nil, 0644)
	if _, err := NewStore(file); err == nil {
		t.Error("Expected error when vault is a file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := store.Save("flow", sampleCanvas())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if path != filepath.Join(dir, "flow.canvas") {
		t.Errorf("Unexpected path '%s'", path)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temp file to be gone")
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  \"nodes\"") {
		t.Errorf("Expected two-space indented JSON, got %s", data)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("stored file is not JSON: %v", err)
	}

	loaded, err := store.Load("flow.canvas")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Nodes) != 1 || loaded.Nodes[0].Color != canvas.ColorPurple {
		t.Errorf("Unexpected loaded canvas %+v", loaded)
	}
}

func TestSave_GeneratedName(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	path, err := store.Save("  ", sampleCanvas())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "sketch-") || filepath.Ext(path) != ".canvas" {
		t.Errorf("Unexpected generated path '%s'", path)
	}
}

func TestSave_RejectsPaths(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	for _, name := range []string{"../escape", "a/b", `a\b`, ".."} {
		if _, err := store.Save(name, sampleCanvas()); err == nil {
			t.Errorf("Expected error for name %q", name)
		}
	}
}

func TestSave_KeepsGroupAndFileNodes(t *testing.T) {
	store, _ := NewStore(t.TempDir())
	c, err := canvas.Parse([]byte(`{
		"nodes":[
			{"id":"g","type":"group","label":"Inputs","x":0,"y":0,"width":400,"height":300},
			{"id":"f","type":"file","file":"a.md","x":10,"y":10,"width":100,"height":60}
		],
		"edges":[{"id":"e","fromNode":"g","fromSide":"right","toNode":"f","toSide":"left","toEnd":"arrow"}]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	path, err := store.Save("groups", c)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	data, _ := os.ReadFile(path)
	for _, want := range []string{`"label": "Inputs"`, `"file": "a.md"`, `"toEnd": "arrow"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %s in stored canvas, got %s", want, data)
		}
	}

	loaded, err := store.Load("groups")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(loaded.Nodes[1].Extra["file"]) != `"a.md"` {
		t.Errorf("Expected file path after reload, got %v", loaded.Nodes[1].Extra)
	}
}
