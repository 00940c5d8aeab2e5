// Package patricia implements the bit-indexed Patricia (radix) trie used by
// the SYMB block to resolve a byte-string name to a (string_index,
// item_index) payload.
//
// Grounded on original_source/nintendo_patricia_tree/src/lib.rs: the same
// flat node array, the same "is_leaf / bit_index / two children" node shape,
// and the same prefix-stop search semantics. The original reads its key as
// a bitvec (bitvec::view::BitView::view_bits::<Msb0>()); here the key's
// individual bits are pulled with github.com/icza/bitio, re-grounded from
// the same package's use for the FLAC bitstream elsewhere (encode.go,
// enc_frame.go) -- there it drives a bit *writer*, here the matching bit
// *reader*.
package patricia

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"

	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
)

// sentinel marks "no such child" for node indices.
const sentinel = 0xFFFFFFFF

// Data is the payload carried by every node (meaningful on leaves; present
// but ignored on non-leaves in the on-disk layout).
type Data struct {
	StringIndex uint32
	ItemIndex   uint32
}

// Node is one entry of the flat trie array.
type Node struct {
	IsLeaf   bool
	BitIndex uint16
	// Left and Right are child node indices, or -1 for "no such branch".
	Left, Right int64
	Data        Data
}

// Tree is a decoded Patricia trie: a root index plus the flat node array it
// indexes into.
type Tree struct {
	RootIndex int64 // -1 when the tree is empty.
	Nodes     []Node
}

func idxOrSentinel(v uint32) int64 {
	if v == sentinel {
		return -1
	}
	return int64(v)
}

// Read decodes a Tree: a u32 root_index, a u32 node_count, then that many
// nodes.
func Read(r *binstream.Reader) (Tree, error) {
	rootRaw, err := r.ReadU32()
	if err != nil {
		return Tree{}, err
	}
	count, err := r.ReadU32()
	if err != nil {
		return Tree{}, err
	}
	nodes := make([]Node, count)
	for i := range nodes {
		isLeafFlag, err := r.ReadU16()
		if err != nil {
			return Tree{}, errs.Wrap(errs.Io, err, "patricia.Read: node %d is_leaf_flag", i)
		}
		bitIndex, err := r.ReadU16()
		if err != nil {
			return Tree{}, errs.Wrap(errs.Io, err, "patricia.Read: node %d bit_index", i)
		}
		left, err := r.ReadU32()
		if err != nil {
			return Tree{}, errs.Wrap(errs.Io, err, "patricia.Read: node %d left_child", i)
		}
		right, err := r.ReadU32()
		if err != nil {
			return Tree{}, errs.Wrap(errs.Io, err, "patricia.Read: node %d right_child", i)
		}
		stringIndex, err := r.ReadU32()
		if err != nil {
			return Tree{}, errs.Wrap(errs.Io, err, "patricia.Read: node %d string_index", i)
		}
		itemIndex, err := r.ReadU32()
		if err != nil {
			return Tree{}, errs.Wrap(errs.Io, err, "patricia.Read: node %d item_index", i)
		}
		nodes[i] = Node{
			IsLeaf:   isLeafFlag != 0,
			BitIndex: bitIndex,
			Left:     idxOrSentinel(left),
			Right:    idxOrSentinel(right),
			Data:     Data{StringIndex: stringIndex, ItemIndex: itemIndex},
		}
	}
	return Tree{RootIndex: idxOrSentinel(rootRaw), Nodes: nodes}, nil
}

// keyBit returns the bit at the given global MSB-first bit index of key
// (byte i, bit j within it, bitIndex = 8*i+j), and whether that index falls
// within the key's length. It starts a fresh bitio.Reader at the key byte
// holding the bit on every call, which is wasteful for deep tries but
// matches the "random access into a short key" shape of the format -- keys
// are file/symbol names, at most a few hundred bytes.
func keyBit(key []byte, bitIndex uint16) (bit byte, ok bool, err error) {
	if int(bitIndex) >= 8*len(key) {
		return 0, false, nil
	}
	br := bitio.NewReader(bytes.NewReader(key[bitIndex/8:]))
	v, err := br.ReadBits(uint8(bitIndex%8) + 1)
	if err != nil {
		if err == io.EOF {
			return 0, false, nil
		}
		return 0, false, errutil.Err(err)
	}
	return byte(v & 1), true, nil
}

// Search walks the trie's lookup algorithm, returning the
// payload at the first leaf reached, or the payload of the last internal
// node visited if the key runs out before a leaf is reached (the "past end
// of key" exit that makes this a prefix lookup).
func (t Tree) Search(key []byte) (Data, error) {
	if t.RootIndex < 0 || int(t.RootIndex) >= len(t.Nodes) {
		return Data{}, errs.New(errs.NotFound, "patricia.Search: empty or invalid root")
	}
	cur := t.Nodes[t.RootIndex]
	for !cur.IsLeaf {
		bit, ok, err := keyBit(key, cur.BitIndex)
		if err != nil {
			return Data{}, err
		}
		if !ok {
			// Past the end of the key: stop here and return this node's payload.
			return cur.Data, nil
		}
		var child int64
		if bit == 1 {
			child = cur.Right
		} else {
			child = cur.Left
		}
		if child < 0 {
			return Data{}, errs.New(errs.NotFound, "patricia.Search: sentinel child at bit %d", cur.BitIndex)
		}
		if int(child) >= len(t.Nodes) {
			return Data{}, errs.New(errs.IndexOutOfBounds, "patricia.Search: child %d of %d", child, len(t.Nodes))
		}
		cur = t.Nodes[child]
	}
	return cur.Data, nil
}

// Get performs direct array access for a caller that already has a node
// index from some other source.
func (t Tree) Get(index int) (Data, bool) {
	if index < 0 || index >= len(t.Nodes) {
		return Data{}, false
	}
	return t.Nodes[index].Data, true
}
