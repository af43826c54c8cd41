package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFragment assembles one fragment: magic, node bytes, nextFragment ref
// (uncompressed-8 form), footer.
func buildFragment(nodes []byte, next ChunkRef) []byte {
	buf := encodeU64LE(fragmentMagic)
	buf = append(buf, nodes...)
	buf = append(buf, encodeU64LE(next.Stp)...)
	buf = append(buf, encodeU64LE(next.Cb)...)
	buf = append(buf, encodeU64LE(fragmentFooter)...)
	return buf
}

func encodeU64LE(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func terminatorNode() []byte {
	h := FileNodeHeader{Valid: true, Kind: NodeChunkTerminatorFND, Size: 4, BaseType: 0}
	return encodeU32LE(EncodeFileNodeHeader(h))
}

func endNode() []byte {
	h := FileNodeHeader{Valid: true, Kind: NodeRevisionManifestEndFND, Size: 4, BaseType: 0}
	return encodeU32LE(EncodeFileNodeHeader(h))
}

func TestFileNodeListIterator_SingleFragment(t *testing.T) {
	nodes := append(endNode(), terminatorNode()...)
	fragBytes := buildFragment(nodes, NilChunkRef)

	start := ChunkRef{Stp: 0, Cb: uint64(len(fragBytes))}
	source := func(ref ChunkRef) (*Reader, error) {
		return NewReader(fragBytes), nil
	}

	it, err := NewFileNodeListIterator(source, start, nil)
	require.NoError(t, err)

	node, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NodeRevisionManifestEndFND, node.Header.Kind)

	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileNodeListIterator_CrossesFragments(t *testing.T) {
	frag2Bytes := buildFragment(append(endNode(), terminatorNode()...), NilChunkRef)
	frag2Ref := ChunkRef{Stp: 1000, Cb: uint64(len(frag2Bytes))}

	frag1Bytes := buildFragment(endNode(), frag2Ref)
	frag1Ref := ChunkRef{Stp: 0, Cb: uint64(len(frag1Bytes))}

	fragments := map[uint64][]byte{
		frag1Ref.Stp: frag1Bytes,
		frag2Ref.Stp: frag2Bytes,
	}
	source := func(ref ChunkRef) (*Reader, error) {
		return NewReader(fragments[ref.Stp]), nil
	}

	it, err := NewFileNodeListIterator(source, frag1Ref, nil)
	require.NoError(t, err)

	var kinds []FileNodeKind
	for {
		node, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		kinds = append(kinds, node.Header.Kind)
	}
	assert.Equal(t, []FileNodeKind{NodeRevisionManifestEndFND, NodeRevisionManifestEndFND}, kinds)
}

func TestFileNodeListIterator_NilStartIsEmpty(t *testing.T) {
	it, err := NewFileNodeListIterator(func(ref ChunkRef) (*Reader, error) {
		t.Fatal("source should not be called for a Nil start")
		return nil, nil
	}, NilChunkRef, nil)
	require.NoError(t, err)
	_, ok, err := it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}
