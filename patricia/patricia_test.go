package patricia_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kitlith/brsar/errs"
	"github.com/kitlith/brsar/internal/binstream"
	"github.com/kitlith/brsar/patricia"
)

func u32be(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

func u16be(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

const sentinel = 0xFFFFFFFF

type nodeSpec struct {
	isLeaf             bool
	bitIndex           uint16
	left, right        uint32
	stringIdx, itemIdx uint32
}

func buildTree(rootIndex uint32, nodes []nodeSpec) []byte {
	var data []byte
	data = append(data, u32be(rootIndex)...)
	data = append(data, u32be(uint32(len(nodes)))...)
	for _, n := range nodes {
		leafFlag := uint16(0)
		if n.isLeaf {
			leafFlag = 1
		}
		data = append(data, u16be(leafFlag)...)
		data = append(data, u16be(n.bitIndex)...)
		data = append(data, u32be(n.left)...)
		data = append(data, u32be(n.right)...)
		data = append(data, u32be(n.stringIdx)...)
		data = append(data, u32be(n.itemIdx)...)
	}
	return data
}

// TestPrefixStop reproduces the S3 scenario: a root testing a bit well past
// the end of a 4-byte key, both children sentinel except the bit the key
// actually has is irrelevant since the key runs out first -- the lookup must
// stop at the root and return its own payload.
func TestPrefixStop(t *testing.T) {
	data := buildTree(0, []nodeSpec{
		{isLeaf: false, bitIndex: 100, left: sentinel, right: sentinel, stringIdx: 7, itemIdx: 9},
	})
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	tree, err := patricia.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tree.Search([]byte("ab\x00\x00")) // 32 bits, bit_index 100 is past the end
	if err != nil {
		t.Fatal(err)
	}
	if got.StringIndex != 7 || got.ItemIndex != 9 {
		t.Fatalf("got %+v, want {StringIndex:7 ItemIndex:9}", got)
	}
}

// TestSearchReachesLeaf builds a depth-1 trie that branches on the first bit
// of the key (bit_index 0, MSB of byte 0) and checks both branches reach the
// expected leaf.
func TestSearchReachesLeaf(t *testing.T) {
	data := buildTree(0, []nodeSpec{
		{isLeaf: false, bitIndex: 0, left: 1, right: 2},
		{isLeaf: true, bitIndex: 0, left: sentinel, right: sentinel, stringIdx: 1, itemIdx: 10},
		{isLeaf: true, bitIndex: 0, left: sentinel, right: sentinel, stringIdx: 2, itemIdx: 20},
	})
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	tree, err := patricia.Read(r)
	if err != nil {
		t.Fatal(err)
	}

	// 0x00 has MSB 0 -> left child (node 1).
	got, err := tree.Search([]byte{0x00})
	if err != nil {
		t.Fatal(err)
	}
	if got.ItemIndex != 10 {
		t.Fatalf("key 0x00: got ItemIndex %d, want 10", got.ItemIndex)
	}

	// 0x80 has MSB 1 -> right child (node 2).
	got, err = tree.Search([]byte{0x80})
	if err != nil {
		t.Fatal(err)
	}
	if got.ItemIndex != 20 {
		t.Fatalf("key 0x80: got ItemIndex %d, want 20", got.ItemIndex)
	}
}

func TestSearchSentinelChildNotFound(t *testing.T) {
	data := buildTree(0, []nodeSpec{
		{isLeaf: false, bitIndex: 0, left: sentinel, right: sentinel},
	})
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	tree, err := patricia.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	_, err = tree.Search([]byte{0x80}) // bit 0 is 1 -> right child, sentinel
	if err == nil {
		t.Fatal("expected NotFound error")
	}
	e, ok := err.(*errs.Error)
	if !ok || e.Kind != errs.NotFound {
		t.Fatalf("got %v, want NotFound", err)
	}
}

// TestReadStructure decodes a small trie and compares the whole result
// against a hand-built expectation with cmp.Diff, catching any field- or
// shape-level drift that a value-by-value check might miss.
func TestReadStructure(t *testing.T) {
	data := buildTree(0, []nodeSpec{
		{isLeaf: false, bitIndex: 0, left: 1, right: 2},
		{isLeaf: true, bitIndex: 0, left: sentinel, right: sentinel, stringIdx: 1, itemIdx: 10},
		{isLeaf: true, bitIndex: 0, left: sentinel, right: sentinel, stringIdx: 2, itemIdx: 20},
	})
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	got, err := patricia.Read(r)
	if err != nil {
		t.Fatal(err)
	}

	want := patricia.Tree{
		RootIndex: 0,
		Nodes: []patricia.Node{
			{IsLeaf: false, BitIndex: 0, Left: 1, Right: 2},
			{IsLeaf: true, BitIndex: 0, Left: -1, Right: -1, Data: patricia.Data{StringIndex: 1, ItemIndex: 10}},
			{IsLeaf: true, BitIndex: 0, Left: -1, Right: -1, Data: patricia.Data{StringIndex: 2, ItemIndex: 20}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("patricia.Read mismatch (-want +got):\n%s", diff)
	}
}

func TestGet(t *testing.T) {
	data := buildTree(0, []nodeSpec{
		{isLeaf: true, bitIndex: 0, left: sentinel, right: sentinel, stringIdx: 42, itemIdx: 43},
	})
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	tree, err := patricia.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := tree.Get(0)
	if !ok || d.StringIndex != 42 {
		t.Fatalf("Get(0) = (%+v, %v), want ({StringIndex:42 ...}, true)", d, ok)
	}
	if _, ok := tree.Get(1); ok {
		t.Fatal("Get(1) on a 1-node tree: want ok=false")
	}
}

// TestRoundTrip is property 4 in miniature: each leaf's own payload is
// reachable by searching for a key whose branch bit selects that leaf. The
// keys are single bytes, and only their MSB (bit 0) decides the path.
func TestRoundTrip(t *testing.T) {
	// A 3-node trie over 1-byte keys: root branches on bit 0, each child is
	// a leaf (no further branching).
	data := buildTree(0, []nodeSpec{
		{isLeaf: false, bitIndex: 0, left: 1, right: 2},
		{isLeaf: true, bitIndex: 1, left: sentinel, right: sentinel, stringIdx: 0, itemIdx: 100},
		{isLeaf: true, bitIndex: 1, left: sentinel, right: sentinel, stringIdx: 1, itemIdx: 200},
	})
	r := binstream.New(bytes.NewReader(data), binstream.BigEndian)
	tree, err := patricia.Read(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range [][]byte{{0x00}, {0x7F}, {0x80}, {0xFF}} {
		got, err := tree.Search(key)
		if err != nil {
			t.Fatalf("Search(%x): %v", key, err)
		}
		wantLeaf := got.StringIndex == 0 || got.StringIndex == 1
		if !wantLeaf {
			t.Fatalf("Search(%x) = %+v, expected to land on one of the two leaves", key, got)
		}
		// Bit 0 (MSB) selects the branch; confirm it picked the right one.
		msb := key[0] >> 7
		if msb == 0 && got.StringIndex != 0 {
			t.Fatalf("Search(%x): expected left leaf (StringIndex 0), got %+v", key, got)
		}
		if msb == 1 && got.StringIndex != 1 {
			t.Fatalf("Search(%x): expected right leaf (StringIndex 1), got %+v", key, got)
		}
	}
}
