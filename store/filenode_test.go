package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/onekit/pkg/types"
)

func encodeU32LE(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func buildHeaderBytes(t *testing.T, h FileNodeHeader) []byte {
	t.Helper()
	return encodeU32LE(EncodeFileNodeHeader(h))
}

func TestDecodeFileNode_RevisionManifestEnd_NoBody(t *testing.T) {
	h := FileNodeHeader{Valid: true, Kind: NodeRevisionManifestEndFND, Size: 4, BaseType: 0}
	buf := buildHeaderBytes(t, h)

	r := NewReader(buf)
	node, err := DecodeFileNode(r, nil)
	require.NoError(t, err)
	assert.Equal(t, RevisionManifestEndFND{}, node.Body)
	assert.Equal(t, 0, r.Remaining())
}

func TestDecodeFileNode_InvalidHeaderTerminatesWithNilBody(t *testing.T) {
	buf := encodeU32LE(0x00000000) // Valid bit clear
	r := NewReader(buf)
	node, err := DecodeFileNode(r, nil)
	require.NoError(t, err)
	assert.False(t, node.Header.Valid)
	assert.Nil(t, node.Body)
}

func TestDecodeFileNode_UnrecognizedNodeID(t *testing.T) {
	h := FileNodeHeader{Valid: true, Kind: FileNodeKind(0x3FE), Size: 4, BaseType: 0}
	buf := buildHeaderBytes(t, h)
	_, err := DecodeFileNode(NewReader(buf), nil)
	require.Error(t, err)
	var te *types.Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, types.ErrKindUnrecognizedFileNode, te.Kind)
}

func TestDecodeFileNode_BaseTypeMismatch(t *testing.T) {
	// RevisionManifestEndFND declares baseType 0; claim baseType 1 instead.
	h := FileNodeHeader{Valid: true, Kind: NodeRevisionManifestEndFND, Size: 12, BaseType: 1, StpFormat: 0, CbFormat: 0}
	buf := buildHeaderBytes(t, h)
	_, err := DecodeFileNode(NewReader(buf), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrBaseTypeMismatch))
}

func TestDecodeFileNode_UnexpectedFileNode(t *testing.T) {
	h := FileNodeHeader{Valid: true, Kind: NodeRevisionManifestEndFND, Size: 4, BaseType: 0}
	buf := buildHeaderBytes(t, h)
	allowed := NewAllowedNodes(NodeObjectGroupEndFND) // does not include RevisionManifestEndFND
	_, err := DecodeFileNode(NewReader(buf), allowed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnexpectedFileNode))
}

func TestDecodeFileNode_SizeMismatchIsTruncated(t *testing.T) {
	// Declare size 8 but RevisionManifestEndFND has no body past the 4-byte
	// header, so the post-condition offset check must fail.
	h := FileNodeHeader{Valid: true, Kind: NodeRevisionManifestEndFND, Size: 8, BaseType: 0}
	buf := append(buildHeaderBytes(t, h), 0, 0, 0, 0)
	_, err := DecodeFileNode(NewReader(buf), nil)
	require.Error(t, err)
}

func TestDecodeFileNode_ObjectSpaceManifestRoot(t *testing.T) {
	h := FileNodeHeader{Valid: true, Kind: NodeObjectSpaceManifestRootFND, Size: 4 + 20, BaseType: 0}
	var body []byte
	guidBytes := make([]byte, 16)
	guidBytes[0] = 0xAB
	body = append(body, guidBytes...)
	body = append(body, encodeU32LE(7)...)

	buf := append(buildHeaderBytes(t, h), body...)
	node, err := DecodeFileNode(NewReader(buf), nil)
	require.NoError(t, err)
	got, ok := node.Body.(ObjectSpaceManifestRootFND)
	require.True(t, ok)
	assert.Equal(t, uint32(7), got.GosidRoot.N)
	assert.Equal(t, byte(0xAB), got.GosidRoot.GUID[0])
}

func TestDecodeFileNode_ObjectDeclarationWithRefCountFNDX_NarrowAndWide(t *testing.T) {
	// Narrow (1-byte CRef) form.
	bodyNarrow := append([]byte{}, encodeU32LE(uint32(NewCompactID(3, 1)))...)
	bodyNarrow = append(bodyNarrow, encodeU32LE(uint32(JCIDFlagIsPropertySet|0x12))...)
	bodyNarrow = append(bodyNarrow, 0x3) // hasOidRefs|hasOsidRefs, odcs=0
	bodyNarrow = append(bodyNarrow, 5)   // cref u8

	refBytes := append(encodeU32LE(100), encodeU32LE(16)...) // stp/cb uncompressed-4 form
	hNarrow := FileNodeHeader{
		Valid: true, Kind: NodeObjectDeclarationWithRefCountFNDX,
		Size: uint32(4 + len(refBytes) + len(bodyNarrow)), BaseType: 1,
		StpFormat: formatUncompressed4, CbFormat: formatUncompressed4,
	}
	buf := buildHeaderBytes(t, hNarrow)
	buf = append(buf, refBytes...)
	buf = append(buf, bodyNarrow...)

	node, err := DecodeFileNode(NewReader(buf), nil)
	require.NoError(t, err)
	got, ok := node.Body.(ObjectDeclarationWithRefCountFNDX)
	require.True(t, ok)
	assert.Equal(t, uint32(5), got.CRef)
	assert.True(t, got.HasOidRefs)
	assert.True(t, got.HasOsidRefs)
	assert.False(t, node.Ref.IsNil())
}

func TestDecodeFileNode_ChunkTerminator(t *testing.T) {
	h := FileNodeHeader{Valid: true, Kind: NodeChunkTerminatorFND, Size: 4, BaseType: 2}
	buf := buildHeaderBytes(t, h)
	node, err := DecodeFileNode(NewReader(buf), nil)
	require.NoError(t, err)
	assert.Equal(t, ChunkTerminatorFND{}, node.Body)
}
