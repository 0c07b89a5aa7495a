package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// PNGMediaType is the only media type sketches are sent as.
const PNGMediaType = "image/png"

const pngDataURLPrefix = "data:image/png;base64,"

// EncodeImage reads the file at path and returns its bytes as standard
// base64. Any bytes are accepted; the content is never inspected.
func EncodeImage(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return EncodeBytes(data), nil
}

// EncodeBytes encodes in-memory image bytes the same way EncodeImage does.
func EncodeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// StripDataURL removes the "data:image/png;base64," prefix browsers put in
// front of canvas captures. Other strings are returned unchanged.
func StripDataURL(s string) string {
	return strings.TrimPrefix(s, pngDataURLPrefix)
}
