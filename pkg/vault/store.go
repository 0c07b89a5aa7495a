package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sipeed/sketchcanvas/pkg/canvas"
)

// Extension is the file extension Obsidian uses for canvases.
const Extension = ".canvas"

var ErrNoVault = errors.New("OBSIDIAN_VAULT environment variable not set")

// Store writes canvases into an Obsidian vault directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore checks that dir exists and is a directory.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrNoVault
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns where a canvas called name is stored.
func (s *Store) Path(name string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+Extension), nil
}

// Save writes c as indented JSON to <vault>/<name>.canvas, replacing any
// previous file atomically. An empty name gets a generated one. The final
// path is returned.
func (s *Store) Save(name string, c *canvas.Canvas) (string, error) {
	if strings.TrimSpace(name) == "" {
		name = "sketch-" + uuid.NewString()
	}
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal canvas: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename temp file: %w", err)
	}
	return path, nil
}

// Load reads a stored canvas back.
func (s *Store) Load(name string) (*canvas.Canvas, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return canvas.Parse(data)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), Extension)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid canvas name %q", name)
	}
	return name, nil
}
