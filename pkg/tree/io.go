package tree

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fishbone/pkg/errors"
)

// Format names a tree document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Tree Serialization API
// =============================================================================

// Read decodes a tree from r.
func Read(r io.Reader, format Format) (*Tree, error) {
	t := &Tree{}
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(t); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json tree")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(t); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml tree")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown tree format %q", format)
	}
	return t, nil
}

// Parse decodes a tree from bytes.
func Parse(data []byte, format Format) (*Tree, error) {
	return Read(bytes.NewReader(data), format)
}

// ReadFile reads a tree file, choosing the decoder from its extension.
func ReadFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tree file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// Marshal encodes t as indented JSON.
func Marshal(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes t as indented JSON to w.
func Write(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes t as JSON to path.
func WriteFile(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(t, f)
}

// Hash returns a content hash of t. Equal trees hash equally regardless of
// the format they were read from.
func Hash(t *Tree) string {
	data, _ := json.Marshal(t)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
