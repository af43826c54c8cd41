package onenote

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/onekit/pkg/types"
	"github.com/joshuapare/onekit/store"
)

func extendedGUIDBytes(g store.ExtendedGUID) []byte {
	b := append([]byte{}, g.GUID[:]...)
	return append(b, put32(g.N)...)
}

func chunkRefBytes(ref store.ChunkRef) []byte {
	return append(put64(ref.Stp), put64(ref.Cb)...)
}

// fixtureNode packs one file node: header, an uncompressed-8 chunk ref when
// baseType calls for one, then the body bytes, matching how DecodeFileNode
// expects to read it back.
func fixtureNode(kind store.FileNodeKind, baseType uint8, ref store.ChunkRef, body []byte) []byte {
	var refBytes []byte
	if baseType == 1 || baseType == 2 {
		refBytes = chunkRefBytes(ref)
	}
	size := 4 + len(refBytes) + len(body)
	h := store.FileNodeHeader{Valid: true, Kind: kind, Size: uint32(size), BaseType: baseType}
	buf := put32(store.EncodeFileNodeHeader(h))
	buf = append(buf, refBytes...)
	buf = append(buf, body...)
	return buf
}

func emptyPropertySetBlob() []byte {
	buf := []byte{0x00, 0x00} // cProperties = 0
	buf = append(buf, put32(0x02000000)...) // OID stream: count 0, osidStreamNotPresent
	return buf
}

func buildMinimalSectionFile(t *testing.T, jcid store.JCID) []byte {
	t.Helper()

	objGUID := store.NewRandomGUID()
	rootGosid := store.ExtendedGUID{GUID: store.NewRandomGUID(), N: 1}
	rid := store.ExtendedGUID{GUID: store.NewRandomGUID(), N: 1}

	blob := emptyPropertySetBlob()

	declBody := append([]byte{}, put32(0)...)            // coid: CompactID(0,0)
	declBody = append(declBody, put32(uint32(jcid))...) // jcid
	declBody = append(declBody, 0x00)                    // flags: odcs=0, no oid/osid refs
	declBody = append(declBody, 0x00)                    // refcount (u8, non-wide)

	revisionRoleNode := fixtureNode(store.NodeRevisionRoleDeclarationFND, 0, store.ChunkRef{},
		append(extendedGUIDBytes(rid), put32(1)...))

	startBody := append([]byte{}, extendedGUIDBytes(rid)...)
	startBody = append(startBody, extendedGUIDBytes(store.NilExtendedGUID)...)
	startBody = append(startBody, put64(store.TimeToFiletime(time.Now()))...)
	startBody = append(startBody, put32(1)...) // revisionRole
	startBody = append(startBody, put32(0)...) // odcsDefault
	startNode := fixtureNode(store.NodeRevisionManifestStart4FND, 0, store.ChunkRef{}, startBody)

	tableStartNode := fixtureNode(store.NodeGlobalIdTableStartFNDX, 0, store.ChunkRef{}, nil)
	tableEntryBody := append(put32(0), objGUID[:]...)
	tableEntryNode := fixtureNode(store.NodeGlobalIdTableEntryFNDX, 0, store.ChunkRef{}, tableEntryBody)
	tableEndNode := fixtureNode(store.NodeGlobalIdTableEndFNDX, 0, store.ChunkRef{}, nil)

	var declNode []byte // placeholder until blobRef is known

	rootObjRefBody := append([]byte{}, objGUID[:]...)
	rootObjRefBody = append(rootObjRefBody, put32(0)...) // N=0
	rootObjRefBody = append(rootObjRefBody, put32(uint32(types.RoleContents))...)
	rootObjRefNode := fixtureNode(store.NodeRootObjectReference3FND, 0, store.ChunkRef{}, rootObjRefBody)

	endNode := fixtureNode(store.NodeRevisionManifestEndFND, 0, store.ChunkRef{}, nil)
	terminatorNode := fixtureNode(store.NodeChunkTerminatorFND, 0, store.ChunkRef{}, nil)

	var buf []byte

	// Header placeholder; filled in once every offset is known.
	buf = append(buf, make([]byte, store.HeaderSize)...)

	// Blob comes first so its offset is fixed before the node referencing it.
	blobStp := uint64(len(buf))
	buf = append(buf, blob...)
	blobRef := store.ChunkRef{Stp: blobStp, Cb: uint64(len(blob))}
	declNode = fixtureNode(store.NodeObjectDeclarationWithRefCountFNDX, 1, blobRef, declBody)

	revFragNodes := append([]byte{}, revisionRoleNode...)
	revFragNodes = append(revFragNodes, startNode...)
	revFragNodes = append(revFragNodes, tableStartNode...)
	revFragNodes = append(revFragNodes, tableEntryNode...)
	revFragNodes = append(revFragNodes, tableEndNode...)
	revFragNodes = append(revFragNodes, declNode...)
	revFragNodes = append(revFragNodes, rootObjRefNode...)
	revFragNodes = append(revFragNodes, endNode...)
	revFragNodes = append(revFragNodes, terminatorNode...)
	revFrag := buildOneFragment(revFragNodes)
	revListRef := store.ChunkRef{Stp: uint64(len(buf)), Cb: uint64(len(revFrag))}
	buf = append(buf, revFrag...)

	spaceListNodes := fixtureNode(store.NodeRevisionManifestListReferenceFND, 1, revListRef, nil)
	spaceListNodes = append(spaceListNodes, terminatorNode...)
	spaceFrag := buildOneFragment(spaceListNodes)
	spaceListRef := store.ChunkRef{Stp: uint64(len(buf)), Cb: uint64(len(spaceFrag))}
	buf = append(buf, spaceFrag...)

	rootNodes := fixtureNode(store.NodeObjectSpaceManifestRootFND, 0, store.ChunkRef{}, extendedGUIDBytes(rootGosid))
	rootNodes = append(rootNodes, fixtureNode(store.NodeObjectSpaceManifestListReferenceFND, 1, spaceListRef,
		extendedGUIDBytes(rootGosid))...)
	rootNodes = append(rootNodes, terminatorNode...)
	rootFrag := buildOneFragment(rootNodes)
	rootFragRef := store.ChunkRef{Stp: uint64(len(buf)), Cb: uint64(len(rootFrag))}
	buf = append(buf, rootFrag...)

	header := buildSectionHeader(t, rootFragRef)
	copy(buf[:store.HeaderSize], header)

	return buf
}

func buildSectionHeader(t *testing.T, fcr store.ChunkRef) []byte {
	t.Helper()
	sectionGUID, err := store.GUIDFromCurlyString("{7B5C52E4-D88C-4DA7-AEB1-5378D02996D3}")
	require.NoError(t, err)

	buf := append([]byte{}, sectionGUID[:]...)
	buf = append(buf, make([]byte, 16*3)...)
	buf = append(buf, make([]byte, 4*4)...)
	buf = append(buf, make([]byte, 8+8)...)
	buf = append(buf, make([]byte, 4+4)...)
	buf = append(buf, make([]byte, 8+8)...)
	buf = append(buf, make([]byte, 4+4)...)
	buf = append(buf, make([]byte, 16+4)...)
	buf = append(buf, make([]byte, 12+12)...)
	buf = append(buf, put64(fcr.Stp)...)
	buf = append(buf, put32(uint32(fcr.Cb))...)
	for len(buf) < store.HeaderSize {
		buf = append(buf, 0)
	}
	return buf
}

func TestOpen_MinimalSectionFile(t *testing.T) {
	data := buildMinimalSectionFile(t, store.JCID(JCIDTitleNode))
	path := filepath.Join(t.TempDir(), "Section1.one")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	doc, err := Open(path)
	require.NoError(t, err)
	defer doc.Close()

	gosid := doc.RootObjectSpaceID()
	space, ok := doc.ObjectSpace(gosid)
	require.True(t, ok)
	require.Len(t, space.Order, 1)

	rid, err := space.DefaultContextRid()
	require.NoError(t, err)
	rev, ok := space.Revisions[rid]
	require.True(t, ok)

	node, err := doc.RootObject(context.Background(), rev, types.RoleContents, 0)
	require.NoError(t, err)
	assert.Equal(t, "TitleNode", node.SchemaName)
}

func TestOpen_UnrecognizedFileType(t *testing.T) {
	data := buildMinimalSectionFile(t, store.JCID(JCIDTitleNode))
	data[0] ^= 0xFF // corrupt guidFileType
	path := filepath.Join(t.TempDir(), "bad.one")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := Open(path)
	require.Error(t, err)
}
