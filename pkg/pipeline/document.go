package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/core/style"
	"github.com/matzehuels/fishbone/pkg/errors"
	"github.com/matzehuels/fishbone/pkg/tree"
)

// Document is a resolved layout on disk: the tree it was computed from and
// the settled frame. The layout command writes it; visualize renders it
// without running the simulation again.
type Document struct {
	VizType string        `json:"viz_type"`
	Tree    *tree.Tree    `json:"tree"`
	Styles  *style.Config `json:"styles,omitempty"`
	Frame   layout.Frame  `json:"frame"`

	graph *fishbone.Graph
}

// NewDocument captures a layout result.
func NewDocument(t *tree.Tree, g *fishbone.Graph, f layout.Frame, opts Options) *Document {
	return &Document{VizType: opts.VizType, Tree: t, Styles: opts.Styles, Frame: f, graph: g}
}

// Graph returns the graph the frame refers to.
func (d *Document) Graph() *fishbone.Graph { return d.graph }

// TreeHash identifies the document's tree.
func (d *Document) TreeHash() string { return tree.Hash(d.Tree) }

// Marshal encodes the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// WriteFile writes the document to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// UnmarshalDocument decodes a document and rebuilds its graph. A frame
// that does not match the tree's shape is INVALID_INPUT.
func UnmarshalDocument(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout document")
	}
	if d.Tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout document has no tree")
	}
	g, err := fishbone.Build(d.Tree)
	if err != nil {
		return nil, err
	}
	if !compatible(g, d.Frame) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"layout frame has %d nodes, tree needs %d", len(d.Frame.Nodes), len(g.Nodes))
	}
	d.graph = g
	d.Frame.Graph = g
	return &d, nil
}

// ReadDocumentFile reads a document written by WriteFile.
func ReadDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDocument(data)
}

// RenderOptions returns opts with the document's viz type and styles
// filled in where opts leaves them unset.
func (d *Document) RenderOptions(opts Options) Options {
	if opts.VizType == "" {
		opts.VizType = d.VizType
	}
	if opts.Styles == nil {
		opts.Styles = d.Styles
	}
	return opts
}
