package spritesmith

import (
	"fmt"
	"image"
	"sort"
)

// Layout algorithm names
const (
	AlgorithmTopDown     = "top-down"
	AlgorithmLeftRight   = "left-right"
	AlgorithmDiagonal    = "diagonal"
	AlgorithmAltDiagonal = "alt-diagonal"
	AlgorithmBinaryTree  = "binary-tree"
)

// Algorithms lists every supported layout name
var Algorithms = []string{
	AlgorithmTopDown,
	AlgorithmLeftRight,
	AlgorithmDiagonal,
	AlgorithmAltDiagonal,
	AlgorithmBinaryTree,
}

// item is one image being placed. width and height include padding.
type item struct {
	path   string
	img    image.Image
	width  int
	height int
	x      int
	y      int
}

type layoutFunc func(items []*item)

func lookupLayout(name string) (layoutFunc, error) {
	switch name {
	case AlgorithmTopDown:
		return layoutTopDown, nil
	case AlgorithmLeftRight:
		return layoutLeftRight, nil
	case AlgorithmDiagonal:
		return layoutDiagonal, nil
	case AlgorithmAltDiagonal:
		return layoutAltDiagonal, nil
	case AlgorithmBinaryTree, "":
		return layoutBinaryTree, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// sortItems orders by key ascending with the path as a tie breaker so
// layouts are reproducible for the same inputs.
func sortItems(items []*item, key func(*item) int) {
	sort.SliceStable(items, func(i, j int) bool {
		ki, kj := key(items[i]), key(items[j])
		if ki != kj {
			return ki < kj
		}
		return items[i].path < items[j].path
	})
}

func layoutTopDown(items []*item) {
	sortItems(items, func(it *item) int { return it.height })

	y := 0
	for _, it := range items {
		it.x, it.y = 0, y
		y += it.height
	}
}

func layoutLeftRight(items []*item) {
	sortItems(items, func(it *item) int { return it.width })

	x := 0
	for _, it := range items {
		it.x, it.y = x, 0
		x += it.width
	}
}

func layoutDiagonal(items []*item) {
	sortItems(items, func(it *item) int { return it.width*it.width + it.height*it.height })

	x, y := 0, 0
	for _, it := range items {
		it.x, it.y = x, y
		x += it.width
		y += it.height
	}
}

// layoutAltDiagonal runs from the bottom left corner to the top right one
func layoutAltDiagonal(items []*item) {
	layoutDiagonal(items)

	total := 0
	for _, it := range items {
		total += it.height
	}
	for _, it := range items {
		it.y = total - it.y - it.height
	}
}

// node is a cell of the growing binary tree packer
type node struct {
	x, y  int
	w, h  int
	used  bool
	right *node
	down  *node
}

func (n *node) find(w, h int) *node {
	if n == nil {
		return nil
	}
	if n.used {
		if found := n.right.find(w, h); found != nil {
			return found
		}
		return n.down.find(w, h)
	}
	if w <= n.w && h <= n.h {
		return n
	}
	return nil
}

func (n *node) split(w, h int) {
	n.used = true
	n.down = &node{x: n.x, y: n.y + h, w: n.w, h: n.h - h}
	n.right = &node{x: n.x + w, y: n.y, w: n.w - w, h: h}
}

// layoutBinaryTree packs the largest images first into a tree that grows
// right or down, whichever keeps the sheet closer to square.
func layoutBinaryTree(items []*item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if ma, mb := max(a.width, a.height), max(b.width, b.height); ma != mb {
			return ma > mb
		}
		if a.height != b.height {
			return a.height > b.height
		}
		if a.width != b.width {
			return a.width > b.width
		}
		return a.path < b.path
	})

	if len(items) == 0 {
		return
	}

	root := &node{w: items[0].width, h: items[0].height}
	for _, it := range items {
		n := root.find(it.width, it.height)
		if n == nil {
			root, n = grow(root, it.width, it.height)
		}
		if n == nil {
			// Unreachable with the size ordering above
			continue
		}
		n.split(it.width, it.height)
		it.x, it.y = n.x, n.y
	}
}

// grow extends the root to fit a w×h rectangle and returns the new root
// and the free node for the rectangle.
func grow(root *node, w, h int) (*node, *node) {
	canGrowDown := w <= root.w
	canGrowRight := h <= root.h

	shouldGrowRight := canGrowRight && root.h >= root.w+w
	shouldGrowDown := canGrowDown && root.w >= root.h+h

	switch {
	case shouldGrowRight:
		return growRight(root, w, h)
	case shouldGrowDown:
		return growDown(root, w, h)
	case canGrowRight:
		return growRight(root, w, h)
	case canGrowDown:
		return growDown(root, w, h)
	default:
		return root, nil
	}
}

func growRight(root *node, w, h int) (*node, *node) {
	next := &node{
		used:  true,
		w:     root.w + w,
		h:     root.h,
		down:  root,
		right: &node{x: root.w, y: 0, w: w, h: root.h},
	}
	return next, next.find(w, h)
}

func growDown(root *node, w, h int) (*node, *node) {
	next := &node{
		used:  true,
		w:     root.w,
		h:     root.h + h,
		down:  &node{x: 0, y: root.h, w: root.w, h: h},
		right: root,
	}
	return next, next.find(w, h)
}
