package fishbone_test

import (
	"fmt"

	"github.com/matzehuels/fishbone/pkg/core/fishbone"
	"github.com/matzehuels/fishbone/pkg/tree"
)

func ExampleBuild() {
	g, err := fishbone.Build(tree.New("Late delivery",
		tree.New("Machine", tree.New("Old press")),
		tree.New("Method"),
		tree.New("People"),
	))
	if err != nil {
		panic(err)
	}

	for _, n := range g.Nodes[1:] {
		fmt.Printf("%-10s depth=%d %-10s region=%s\n", n.Name, n.Depth, n.Orientation, n.Region)
	}
	for _, c := range g.Connectors {
		fmt.Printf("connector %d: %s-%s slot %d/%d\n", c.ID, c.Between[0], c.Between[1], c.ChildIdx, c.MaxChildIdx)
	}
	// Output:
	// Late delivery depth=0 horizontal region=none
	// Machine    depth=1 vertical   region=top
	// Old press  depth=2 horizontal region=top
	// Method     depth=1 vertical   region=bottom
	// People     depth=1 vertical   region=top
	// connector 0: n0-n1 slot 0/1
	// connector 1: n2-c0 slot 0/0
	// connector 2: n0-n1 slot 0/1
	// connector 3: n0-n1 slot 1/1
}
