package store

// FileNodeKind identifies a file-node variant by its 10-bit nodeID field.
// Values are internal to this decoder: spec.md's component design names the
// ~35 variants by contract, not by wire-numeric ID, so the numbering below
// only needs to be self-consistent (the same constant used to encode test
// fixtures and to dispatch decoding), grouped the way the component design
// groups them (object-space manifest, revision manifest, global ID table,
// object declarations, object groups, file data, misc).
type FileNodeKind uint16

const (
	NodeObjectSpaceManifestRootFND          FileNodeKind = 0x004
	NodeObjectSpaceManifestListReferenceFND FileNodeKind = 0x008
	NodeObjectSpaceManifestListStartFND     FileNodeKind = 0x00C

	NodeRevisionManifestListReferenceFND FileNodeKind = 0x010
	NodeRevisionManifestListStartFND     FileNodeKind = 0x014
	NodeRevisionManifestStart4FND        FileNodeKind = 0x01B
	NodeRevisionManifestStart6FND        FileNodeKind = 0x01C
	NodeRevisionManifestStart7FND        FileNodeKind = 0x01D
	NodeRevisionManifestEndFND           FileNodeKind = 0x01E
	NodeRevisionRoleDeclarationFND       FileNodeKind = 0x01F
	NodeRevisionRoleAndContextDeclarationFND FileNodeKind = 0x020

	NodeGlobalIdTableStartFNDX  FileNodeKind = 0x021
	NodeGlobalIdTableStart2FND  FileNodeKind = 0x022
	NodeGlobalIdTableEntryFNDX  FileNodeKind = 0x023
	NodeGlobalIdTableEntry2FNDX FileNodeKind = 0x024
	NodeGlobalIdTableEntry3FNDX FileNodeKind = 0x025
	NodeGlobalIdTableEndFNDX    FileNodeKind = 0x026

	NodeObjectDeclarationWithRefCountFNDX  FileNodeKind = 0x02C
	NodeObjectDeclarationWithRefCount2FNDX FileNodeKind = 0x02D
	NodeObjectRevisionWithRefCountFNDX     FileNodeKind = 0x02E
	NodeObjectRevisionWithRefCount2FNDX    FileNodeKind = 0x02F

	NodeRootObjectReference2FNDX FileNodeKind = 0x038
	NodeRootObjectReference3FND  FileNodeKind = 0x039

	NodeObjectDeclaration2RefCountFND      FileNodeKind = 0x040
	NodeObjectDeclaration2LargeRefCountFND FileNodeKind = 0x041

	NodeReadOnlyObjectDeclaration2RefCountFND      FileNodeKind = 0x042
	NodeReadOnlyObjectDeclaration2LargeRefCountFND FileNodeKind = 0x043

	NodeObjectDeclarationFileData3RefCountFND      FileNodeKind = 0x048
	NodeObjectDeclarationFileData3LargeRefCountFND FileNodeKind = 0x049

	NodeObjectGroupListReferenceFND FileNodeKind = 0x050
	NodeObjectGroupStartFND         FileNodeKind = 0x051
	NodeObjectGroupEndFND           FileNodeKind = 0x052

	NodeDataSignatureGroupDefinitionFND  FileNodeKind = 0x058
	NodeObjectInfoDependencyOverridesFND FileNodeKind = 0x059
	NodeHashedChunkDescriptor2FND        FileNodeKind = 0x05A

	NodeFileDataStoreListReferenceFND     FileNodeKind = 0x060
	NodeFileDataStoreObjectReferenceFND    FileNodeKind = 0x061
	NodeObjectDataEncryptionKeyV2FNDX      FileNodeKind = 0x062

	NodeChunkTerminatorFND FileNodeKind = 0x0FF
)

var nodeKindNames = map[FileNodeKind]string{
	NodeObjectSpaceManifestRootFND:            "ObjectSpaceManifestRootFND",
	NodeObjectSpaceManifestListReferenceFND:   "ObjectSpaceManifestListReferenceFND",
	NodeObjectSpaceManifestListStartFND:       "ObjectSpaceManifestListStartFND",
	NodeRevisionManifestListReferenceFND:      "RevisionManifestListReferenceFND",
	NodeRevisionManifestListStartFND:          "RevisionManifestListStartFND",
	NodeRevisionManifestStart4FND:             "RevisionManifestStart4FND",
	NodeRevisionManifestStart6FND:             "RevisionManifestStart6FND",
	NodeRevisionManifestStart7FND:             "RevisionManifestStart7FND",
	NodeRevisionManifestEndFND:                "RevisionManifestEndFND",
	NodeRevisionRoleDeclarationFND:            "RevisionRoleDeclarationFND",
	NodeRevisionRoleAndContextDeclarationFND:  "RevisionRoleAndContextDeclarationFND",
	NodeGlobalIdTableStartFNDX:                "GlobalIdTableStartFNDX",
	NodeGlobalIdTableStart2FND:                "GlobalIdTableStart2FND",
	NodeGlobalIdTableEntryFNDX:                "GlobalIdTableEntryFNDX",
	NodeGlobalIdTableEntry2FNDX:               "GlobalIdTableEntry2FNDX",
	NodeGlobalIdTableEntry3FNDX:               "GlobalIdTableEntry3FNDX",
	NodeGlobalIdTableEndFNDX:                  "GlobalIdTableEndFNDX",
	NodeObjectDeclarationWithRefCountFNDX:     "ObjectDeclarationWithRefCountFNDX",
	NodeObjectDeclarationWithRefCount2FNDX:    "ObjectDeclarationWithRefCount2FNDX",
	NodeObjectRevisionWithRefCountFNDX:        "ObjectRevisionWithRefCountFNDX",
	NodeObjectRevisionWithRefCount2FNDX:       "ObjectRevisionWithRefCount2FNDX",
	NodeRootObjectReference2FNDX:              "RootObjectReference2FNDX",
	NodeRootObjectReference3FND:               "RootObjectReference3FND",
	NodeObjectDeclaration2RefCountFND:         "ObjectDeclaration2RefCountFND",
	NodeObjectDeclaration2LargeRefCountFND:    "ObjectDeclaration2LargeRefCountFND",
	NodeReadOnlyObjectDeclaration2RefCountFND: "ReadOnlyObjectDeclaration2RefCountFND",
	NodeReadOnlyObjectDeclaration2LargeRefCountFND: "ReadOnlyObjectDeclaration2LargeRefCountFND",
	NodeObjectDeclarationFileData3RefCountFND:      "ObjectDeclarationFileData3RefCountFND",
	NodeObjectDeclarationFileData3LargeRefCountFND: "ObjectDeclarationFileData3LargeRefCountFND",
	NodeObjectGroupListReferenceFND:                "ObjectGroupListReferenceFND",
	NodeObjectGroupStartFND:                        "ObjectGroupStartFND",
	NodeObjectGroupEndFND:                          "ObjectGroupEndFND",
	NodeDataSignatureGroupDefinitionFND:            "DataSignatureGroupDefinitionFND",
	NodeObjectInfoDependencyOverridesFND:           "ObjectInfoDependencyOverridesFND",
	NodeHashedChunkDescriptor2FND:                  "HashedChunkDescriptor2FND",
	NodeFileDataStoreListReferenceFND:              "FileDataStoreListReferenceFND",
	NodeFileDataStoreObjectReferenceFND:            "FileDataStoreObjectReferenceFND",
	NodeObjectDataEncryptionKeyV2FNDX:              "ObjectDataEncryptionKeyV2FNDX",
	NodeChunkTerminatorFND:                         "ChunkTerminatorFND",
}

// String renders the variant's contract name, or a numeric fallback for
// unknown kinds (used only in error messages — unknown kinds are themselves
// an UnrecognizedFileNode error).
func (k FileNodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "FileNodeKind(unknown)"
}

// baseTypeOf reports the declared base type (0, 1 or 2) for each known
// variant, used to validate the header's baseType field (§4.C:
// BaseTypeMismatch).
var baseTypeOf = map[FileNodeKind]uint8{
	NodeObjectSpaceManifestRootFND:            0,
	NodeObjectSpaceManifestListReferenceFND:   1,
	NodeObjectSpaceManifestListStartFND:       0,
	NodeRevisionManifestListReferenceFND:      1,
	NodeRevisionManifestListStartFND:          0,
	NodeRevisionManifestStart4FND:             0,
	NodeRevisionManifestStart6FND:             0,
	NodeRevisionManifestStart7FND:             0,
	NodeRevisionManifestEndFND:                0,
	NodeRevisionRoleDeclarationFND:            0,
	NodeRevisionRoleAndContextDeclarationFND:  0,
	NodeGlobalIdTableStartFNDX:                0,
	NodeGlobalIdTableStart2FND:                0,
	NodeGlobalIdTableEntryFNDX:                0,
	NodeGlobalIdTableEntry2FNDX:               0,
	NodeGlobalIdTableEntry3FNDX:               0,
	NodeGlobalIdTableEndFNDX:                  0,
	NodeObjectDeclarationWithRefCountFNDX:     1,
	NodeObjectDeclarationWithRefCount2FNDX:    1,
	NodeObjectRevisionWithRefCountFNDX:        1,
	NodeObjectRevisionWithRefCount2FNDX:       1,
	NodeRootObjectReference2FNDX:              0,
	NodeRootObjectReference3FND:               0,
	NodeObjectDeclaration2RefCountFND:         1,
	NodeObjectDeclaration2LargeRefCountFND:    1,
	NodeReadOnlyObjectDeclaration2RefCountFND: 1,
	NodeReadOnlyObjectDeclaration2LargeRefCountFND: 1,
	NodeObjectDeclarationFileData3RefCountFND:      0,
	NodeObjectDeclarationFileData3LargeRefCountFND: 0,
	NodeObjectGroupListReferenceFND:                1,
	NodeObjectGroupStartFND:                        0,
	NodeObjectGroupEndFND:                          0,
	NodeDataSignatureGroupDefinitionFND:            0,
	NodeObjectInfoDependencyOverridesFND:           1,
	NodeHashedChunkDescriptor2FND:                  1,
	NodeFileDataStoreListReferenceFND:              1,
	NodeFileDataStoreObjectReferenceFND:            1,
	NodeObjectDataEncryptionKeyV2FNDX:              1,
	NodeChunkTerminatorFND:                         0,
}

// FileNodeHeader is the unpacked 32-bit file-node header (§4.C / §3):
// {nodeID:10, size:13, stpFormat:2, cbFormat:2, baseType:4, validBit:1}.
type FileNodeHeader struct {
	Valid     bool
	Kind      FileNodeKind
	Size      uint32
	StpFormat uint8
	CbFormat  uint8
	BaseType  uint8
}

// DecodeFileNodeHeader unpacks one 32-bit file-node header. A header with
// Valid == false signals end-of-list per §4.D; callers must not attempt to
// interpret Kind/Size/etc. in that case.
func DecodeFileNodeHeader(r *Reader) (FileNodeHeader, error) {
	raw, err := r.U32()
	if err != nil {
		return FileNodeHeader{}, err
	}
	h := FileNodeHeader{
		Valid:     raw&0x80000000 != 0,
		Kind:      FileNodeKind(raw & 0x3FF),
		Size:      (raw >> 10) & 0x1FFF,
		StpFormat: uint8((raw >> 23) & 0x3),
		CbFormat:  uint8((raw >> 25) & 0x3),
		BaseType:  uint8((raw >> 27) & 0xF),
	}
	return h, nil
}

// EncodeFileNodeHeader packs a header back into its 32-bit wire form. Used
// by fixture builders and by the header's own round-trip test.
func EncodeFileNodeHeader(h FileNodeHeader) uint32 {
	var v uint32
	if h.Valid {
		v |= 0x80000000
	}
	v |= uint32(h.Kind) & 0x3FF
	v |= (h.Size & 0x1FFF) << 10
	v |= (uint32(h.StpFormat) & 0x3) << 23
	v |= (uint32(h.CbFormat) & 0x3) << 25
	v |= (uint32(h.BaseType) & 0xF) << 27
	return v
}
