// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package huffman builds and serializes the canonical Huffman trees used by
// the hzr codec, and implements the decode acceleration structure: a
// 256-entry prefix lookup table fused with tail tree traversal for codes
// longer than 8 bits.
//
// Unlike a textbook Huffman tree, nodes here live in a fixed-capacity arena
// owned by the Tree value rather than behind heap pointers, and children are
// referenced by arena index. This keeps both encode and decode allocation
// free once the (small, stack-sized) arena has been created, and matches the
// lifetime of a tree: one block encode or decode.
package huffman

import (
	"github.com/cosnicolaou/hzr/internal/bitstream"
	"github.com/cosnicolaou/hzr/internal/rle"
)

// NumSymbols is the size of the symbol alphabet: 256 literal bytes plus the
// five zero-run tier symbols.
const NumSymbols = rle.NumSymbols

// SymbolBits is the width, in bits, of a symbol as transmitted in the tree
// description.
const SymbolBits = 9

// MaxNodes is the maximum number of nodes (branches + leaves) in a tree
// over NumSymbols symbols.
const MaxNodes = NumSymbols*2 - 1

// noChild marks a node reference as absent (a leaf has no children).
const noChild = -1

// Node is either an internal branch with two child references or a leaf
// bearing a symbol. Children are arena indices into the owning Tree's
// Nodes slice; noChild marks "no child" (i.e. this is a leaf).
type Node struct {
	ChildA, ChildB int
	Symbol         int // -1 for a branch node
}

func (n *Node) isLeaf() bool { return n.Symbol >= 0 }

// LutEntry is one of the 256 entries of the decode acceleration table,
// indexed by the next 8 bits peeked from the stream.
//
// A terminal entry (Node < 0) resolves a code of Bits <= 8 bits directly to
// Symbol. A non-terminal entry (Node >= 0) means the 8-bit prefix reaches a
// branch node partway down a code longer than 8 bits; the caller continues
// by walking the tree from that node.
type LutEntry struct {
	Node   int
	Bits   int
	Symbol int
}

// Tree is a decode-side Huffman tree: a fixed arena of nodes plus the
// fused 8-bit LUT built during deserialization.
type Tree struct {
	Nodes    [MaxNodes]Node
	numNodes int
	Root     int
	Lut      [256]LutEntry
}

// SymbolInfo holds, per symbol, the data the histogram/tree-builder passes
// are responsible for: its frequency, and (once a tree has been built) its
// assigned canonical code and code length in bits.
type SymbolInfo struct {
	Count int
	Code  uint32
	Bits  int
}

// encodeNode is an internal-only node used while building the encode-side
// tree; unlike the decode-side Node it carries a running frequency Count
// used by the greedy pair-merge, and child references into the same slice.
type encodeNode struct {
	childA, childB int
	count          int
	symbol         int // -1 for a branch
}

// Build runs the greedy pair-merge algorithm (spec.md §4.3) over symbols'
// non-zero counts and writes the resulting canonical tree, in preorder, to
// w (spec.md §4.4). It fills in Code/Bits for every symbol with non-zero
// count. ok is false only if there are zero non-zero-count symbols, in
// which case nothing is written and the caller must fall back to a
// non-Huffman block mode.
func Build(symbols *[NumSymbols]SymbolInfo, w *bitstream.Writer) (ok bool) {
	var nodes [MaxNodes]encodeNode
	numSymbols := 0
	for k := 0; k < NumSymbols; k++ {
		if symbols[k].Count > 0 {
			nodes[numSymbols] = encodeNode{childA: noChild, childB: noChild, count: symbols[k].Count, symbol: k}
			numSymbols++
		}
	}
	if numSymbols == 0 {
		return false
	}

	root := noChild
	nodesLeft := numSymbols
	nextIdx := numSymbols
	for nodesLeft > 1 {
		n1, n2 := noChild, noChild
		for k := 0; k < nextIdx; k++ {
			if nodes[k].count <= 0 {
				continue
			}
			switch {
			case n1 == noChild || nodes[k].count <= nodes[n1].count:
				n2 = n1
				n1 = k
			case n2 == noChild || nodes[k].count <= nodes[n2].count:
				n2 = k
			}
		}
		nodes[nextIdx] = encodeNode{
			childA: n1,
			childB: n2,
			count:  nodes[n1].count + nodes[n2].count,
			symbol: -1,
		}
		root = nextIdx
		nodes[n1].count = 0
		nodes[n2].count = 0
		nextIdx++
		nodesLeft--
	}

	if root != noChild {
		storeTree(nodes[:], root, symbols, w, 0, 0)
	} else {
		// Special case: only one symbol, no binary tree was built. The root
		// is written with an explicit code length of 1 bit so the decoder
		// consumes exactly one bit per decoded symbol.
		storeTree(nodes[:], 0, symbols, w, 0, 1)
	}
	return true
}

func storeTree(nodes []encodeNode, idx int, symbols *[NumSymbols]SymbolInfo, w *bitstream.Writer, code uint32, bits int) {
	node := &nodes[idx]
	if node.symbol >= 0 {
		w.WriteBits(1, 1)
		if w.Failed {
			return
		}
		w.WriteBits(uint32(node.symbol), SymbolBits)
		if w.Failed {
			return
		}
		symbols[node.symbol].Code = code
		symbols[node.symbol].Bits = bits
		return
	}

	w.WriteBits(0, 1)
	if w.Failed {
		return
	}
	storeTree(nodes, node.childA, symbols, w, code, bits+1)
	storeTree(nodes, node.childB, symbols, w, code+(1<<uint(bits)), bits+1)
}

// ReadTree deserializes a tree written by Build, simultaneously populating
// the decode LUT (spec.md §4.5). It fails (ok=false) if the bitstream ends
// prematurely or more than MaxNodes nodes would be required.
func ReadTree(r *bitstream.Reader) (t *Tree, ok bool) {
	t = &Tree{}
	root, ok := t.recover(0, 0, r)
	if !ok {
		return nil, false
	}
	t.Root = root
	return t, true
}

func (t *Tree) recover(code uint32, bits int, r *bitstream.Reader) (nodeIdx int, ok bool) {
	if t.numNodes >= MaxNodes {
		return 0, false
	}
	idx := t.numNodes
	t.numNodes++
	node := &t.Nodes[idx]
	node.ChildA, node.ChildB = noChild, noChild
	node.Symbol = -1

	isLeaf := r.ReadBitChecked()
	if r.Failed {
		return 0, false
	}

	if isLeaf != 0 {
		symbol := int(r.ReadBitsChecked(SymbolBits))
		if r.Failed {
			return 0, false
		}
		node.Symbol = symbol

		if bits <= 8 {
			dups := 256 >> uint(bits)
			lutBits := bits
			if lutBits < 1 {
				lutBits = 1
			}
			for i := 0; i < dups; i++ {
				e := &t.Lut[(i<<uint(bits))|int(code)]
				e.Node = noChild
				e.Bits = lutBits
				e.Symbol = symbol
			}
		}
		return idx, true
	}

	if bits == 8 {
		e := &t.Lut[code]
		e.Node = idx
		e.Bits = 8
		e.Symbol = 0
	}

	childA, ok := t.recover(code, bits+1, r)
	if !ok {
		return 0, false
	}
	node.ChildA = childA

	childB, ok := t.recover(code+(1<<uint(bits)), bits+1, r)
	if !ok {
		return 0, false
	}
	node.ChildB = childB

	return idx, true
}

// IsSingleLeaf reports whether the tree's root is itself a leaf (the
// single-symbol degenerate case of spec.md §4.3/§4.4).
func (t *Tree) IsSingleLeaf() bool {
	return t.Nodes[t.Root].Symbol >= 0
}

// DecodeFast resolves the next symbol using an 8-bit LUT peek, falling
// back to a bit-by-bit tree walk for codes longer than 8 bits. It performs
// no bounds checking; callers must only use it while enough look-ahead
// remains in r (see spec.md §4.6's fast-loop threshold).
func (t *Tree) DecodeFast(r *bitstream.Reader) int {
	e := &t.Lut[r.Peek8()]
	r.Advance(e.Bits)
	if e.Node == noChild {
		return e.Symbol
	}
	node := &t.Nodes[e.Node]
	for node.Symbol < 0 {
		var next int
		if r.ReadBit() != 0 {
			next = node.ChildB
		} else {
			next = node.ChildA
		}
		node = &t.Nodes[next]
	}
	return node.Symbol
}

// DecodeSlow resolves the next symbol with a fully bounds-checked
// bit-by-bit tree walk, including the single-leaf special case where the
// root is itself a leaf (one code bit consumed, symbol unconditionally
// accepted). ok is false if the stream ends prematurely.
func (t *Tree) DecodeSlow(r *bitstream.Reader) (symbol int, ok bool) {
	node := &t.Nodes[t.Root]
	if node.Symbol >= 0 {
		r.AdvanceChecked(1)
		if r.Failed {
			return 0, false
		}
		return node.Symbol, true
	}

	for node.Symbol < 0 {
		var next int
		if r.ReadBitChecked() != 0 {
			next = node.ChildB
		} else {
			next = node.ChildA
		}
		if r.Failed {
			return 0, false
		}
		node = &t.Nodes[next]
	}
	return node.Symbol, true
}
