package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Walk errors.
var (
	ErrNodeCycle = errors.New("node hierarchy contains a cycle")
	ErrNoScene   = errors.New("scene index out of range")
)

// VisitFunc is called once per node with its world transform and depth.
type VisitFunc func(index int, node *Node, world mgl32.Mat4, depth int) error

// Walk visits the nodes of a scene depth-first, parents before children.
// A node reached twice stops the walk, so recursion never goes deeper
// than the node count.
func (d *Document) Walk(scene int, fn VisitFunc) error {
	if scene < 0 || scene >= len(d.Scenes) {
		return fmt.Errorf("%w: %d", ErrNoScene, scene)
	}

	visited := make(map[int]bool, len(d.Nodes))
	var visit func(idx int, parent mgl32.Mat4, depth int) error
	visit = func(idx int, parent mgl32.Mat4, depth int) error {
		if idx < 0 || idx >= len(d.Nodes) {
			return fmt.Errorf("node %d out of range", idx)
		}
		if visited[idx] {
			return fmt.Errorf("%w: node %d", ErrNodeCycle, idx)
		}
		visited[idx] = true

		node := &d.Nodes[idx]
		world := parent.Mul4(node.LocalMatrix())
		if err := fn(idx, node, world, depth); err != nil {
			return err
		}
		for _, c := range node.Children {
			if err := visit(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range d.Scenes[scene].Nodes {
		if err := visit(root, mgl32.Ident4(), 0); err != nil {
			return err
		}
	}
	return nil
}
