package gesture

import (
	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/core/layout"
	"github.com/matzehuels/fishbone/pkg/tree"
)

type surface struct{}

func (surface) Viewport() layout.Viewport { return layout.Viewport{Width: 800, Height: 600} }

func (surface) MeasureLabel(*fishbone.Node) layout.LabelSize {
	return layout.LabelSize{Width: 40, Ascent: 10, Descent: 3}
}

func treeWithRibs() *tree.Tree {
	return tree.New("effect", tree.New("a", tree.New("a1")), tree.New("b"))
}
