package onenote

import (
	"context"
	"crypto/crc32"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/onekit/store"
)

// fileNodeListMagic/Footer mirror the wire constants package store keeps
// unexported; fixtures here build raw fragments the same way the decoder
// reads them.
const (
	fileNodeListMagic  uint64 = 0xA4567AB1F5F7F4C4
	fileNodeListFooter uint64 = 0x8BC215C38233BA4B
)

func put64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func put32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func buildOneFragment(nodes []byte) []byte {
	buf := put64(fileNodeListMagic)
	buf = append(buf, nodes...)
	buf = append(buf, put64(store.NilChunkRef.Stp)...)
	buf = append(buf, put64(store.NilChunkRef.Cb)...)
	buf = append(buf, put64(fileNodeListFooter)...)
	return buf
}

func chunkTerminatorNode() []byte {
	h := store.FileNodeHeader{Valid: true, Kind: store.NodeChunkTerminatorFND, Size: 4, BaseType: 0}
	return put32(store.EncodeFileNodeHeader(h))
}

// fileDataStoreObjectReferenceNode builds one FileDataStoreObjectReferenceFND
// node: header, an uncompressed-8 chunk ref (the blob's own location), and
// the 16-byte GuidReference.
func fileDataStoreObjectReferenceNode(ref store.ChunkRef, guid store.GUID) []byte {
	body := append(put64(ref.Stp), put64(ref.Cb)...)
	body = append(body, guid[:]...)
	size := 4 + len(body)
	h := store.FileNodeHeader{
		Valid: true, Kind: store.NodeFileDataStoreObjectReferenceFND, Size: uint32(size), BaseType: 1,
	}
	return append(put32(store.EncodeFileNodeHeader(h)), body...)
}

func buildFileDataBlob(guid store.GUID, content []byte) []byte {
	buf := append([]byte{}, guid[:]...)
	buf = append(buf, put64(uint64(len(content)))...)
	buf = append(buf, put32(crc32.ChecksumIEEE(content))...)
	buf = append(buf, content...)
	return buf
}

func TestBuildFileDataStore_NilRefIsEmpty(t *testing.T) {
	fds, err := BuildFileDataStore(store.NilChunkRef, func(store.ChunkRef) (*store.Reader, error) {
		t.Fatal("source should not be called for a Nil ref")
		return nil, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, fds)
}

func TestResolveFileData_InternalStore(t *testing.T) {
	content := []byte("hello file data")
	guid := store.NewRandomGUID()
	blobBytes := buildFileDataBlob(guid, content)
	blobRef := store.ChunkRef{Stp: 2000, Cb: uint64(len(blobBytes))}

	listNodes := fileDataStoreObjectReferenceNode(blobRef, guid)
	listNodes = append(listNodes, chunkTerminatorNode()...)
	listBytes := buildOneFragment(listNodes)
	listRef := store.ChunkRef{Stp: 0, Cb: uint64(len(listBytes))}

	source := func(ref store.ChunkRef) (*store.Reader, error) {
		switch ref.Stp {
		case listRef.Stp:
			return store.NewReader(listBytes), nil
		case blobRef.Stp:
			return store.NewReader(blobBytes), nil
		default:
			t.Fatalf("unexpected ref %s", ref)
			return nil, nil
		}
	}

	fds, err := BuildFileDataStore(listRef, source)
	require.NoError(t, err)

	reference := fileDataTagInternal + guid.String()
	resolved, err := ResolveFileData(context.Background(), reference, ".bin", "", "", fds, source)
	require.NoError(t, err)
	assert.Equal(t, content, resolved.Bytes)
}

func TestResolveFileData_InternalStore_CrcMismatch(t *testing.T) {
	guid := store.NewRandomGUID()
	blobBytes := buildFileDataBlob(guid, []byte("abc"))
	blobBytes[len(blobBytes)-1] ^= 0xFF // corrupt the last content byte

	blobRef := store.ChunkRef{Stp: 500, Cb: uint64(len(blobBytes))}
	source := func(ref store.ChunkRef) (*store.Reader, error) {
		return store.NewReader(blobBytes), nil
	}
	fds := &FileDataStore{blobs: map[store.GUID]store.ChunkRef{guid: blobRef}}

	_, err := ResolveFileData(context.Background(), fileDataTagInternal+guid.String(), ".bin", "", "", fds, source)
	require.Error(t, err)
}

func TestResolveFileData_Sidecar(t *testing.T) {
	dir := t.TempDir()
	sidecarDir := filepath.Join(dir, "Section1_onefiles")
	require.NoError(t, os.MkdirAll(sidecarDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sidecarDir, "img1.png"), []byte{9, 9, 9}, 0o644))

	resolved, err := ResolveFileData(context.Background(), fileDataTagSidecar+"img1", ".png", dir, "Section1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9, 9}, resolved.Bytes)
}

func TestResolveFileData_Invalid(t *testing.T) {
	resolved, err := ResolveFileData(context.Background(), fileDataTagInvalid, ".bin", "", "", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, resolved.Bytes)
}

func TestResolveFileData_UnrecognizedTag(t *testing.T) {
	_, err := ResolveFileData(context.Background(), "<bogus>", ".bin", "", "", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnrecognizedFileData)
}
