package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMinimalHeader(t *testing.T, fileType GUID, fcrStp uint64, fcrCb uint32) []byte {
	t.Helper()
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, fileType[:]...)         // guidFileType
	buf = append(buf, make([]byte, 16*3)...)  // guidFile/guidLegacyFileVersion/guidFileFormat
	buf = append(buf, make([]byte, 4*4)...)   // ffv*
	buf = append(buf, make([]byte, 8+8)...)   // legacy free chunk list / transaction log
	buf = append(buf, make([]byte, 4+4)...)   // cTransactionsInLog, cbLegacyExpectedFileLength
	buf = append(buf, make([]byte, 8+8)...)   // placeholder, fcrLegacyFileNodeListRoot
	buf = append(buf, make([]byte, 4+4)...)   // cbLegacyFreeSpaceInFreeChunkList, flags
	buf = append(buf, make([]byte, 16+4)...)  // guidAncestor, crcName
	buf = append(buf, make([]byte, 12+12)...) // fcrHashedChunkList, fcrTransactionLog
	buf = append(buf, encodeU64LE(fcrStp)...)
	buf = append(buf, encodeU32LE(fcrCb)...)
	for len(buf) < HeaderSize {
		buf = append(buf, 0)
	}
	return buf
}

func TestReadHeader_ClassifiesSection(t *testing.T) {
	buf := buildMinimalHeader(t, sectionFileTypeGUID, 2048, 512)
	h, err := ReadHeader(NewReader(buf))
	require.NoError(t, err)
	assert.Equal(t, FileTypeSection, h.FileType)
	assert.Equal(t, uint64(2048), h.FcrFileNodeListRoot.Stp)
	assert.Equal(t, uint32(512), h.FcrFileNodeListRoot.Cb)
}

func TestReadHeader_UnrecognizedFileType(t *testing.T) {
	var bogus GUID
	bogus[0] = 0xFF
	buf := buildMinimalHeader(t, bogus, 0, 0)
	_, err := ReadHeader(NewReader(buf))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedFileFormat)
}

func TestBuildOneStoreFile_RequiresRootAndSpace(t *testing.T) {
	header := Header{FileType: FileTypeSection}
	_, err := BuildOneStoreFile(header, nil, func(ref ChunkRef) (*ObjectSpace, error) {
		return nil, nil
	})
	require.Error(t, err)
}

func TestBuildOneStoreFile_Assembles(t *testing.T) {
	header := Header{FileType: FileTypeSection}
	rootGosid := ExtendedGUID{GUID: GUID{1}, N: 1}
	rootHeader := FileNodeHeader{Valid: true, Kind: NodeObjectSpaceManifestRootFND, BaseType: 0}
	listHeader := FileNodeHeader{Valid: true, Kind: NodeObjectSpaceManifestListReferenceFND, BaseType: 1}

	nodes := []FileNode{
		{Header: rootHeader, Body: ObjectSpaceManifestRootFND{GosidRoot: rootGosid}},
		{Header: listHeader, Body: ObjectSpaceManifestListReferenceFND{Gosid: rootGosid}},
	}
	built := 0
	f, err := BuildOneStoreFile(header, nodes, func(ref ChunkRef) (*ObjectSpace, error) {
		built++
		return NewObjectSpace(rootGosid), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, built)
	assert.Equal(t, rootGosid, f.RootObjectSpaceID)
	assert.Contains(t, f.ObjectSpaces, rootGosid)
}
