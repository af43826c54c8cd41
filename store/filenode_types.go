package store

import "time"

// The structs below are the typed payloads for every file-node variant
// named in the component design. Each carries exactly the fields the
// variant's contract lists; ref/chunk-reference fields that the header
// already carries (BaseType 1/2) are stored alongside the body by
// DecodeFileNode rather than duplicated inside every struct, except where
// the variant's own contract treats the reference as a named field (e.g.
// ObjectDeclarationWithRefCountFNDX's blob reference).

type ObjectSpaceManifestRootFND struct {
	GosidRoot ExtendedGUID
}

func (ObjectSpaceManifestRootFND) fileNodeKind() FileNodeKind { return NodeObjectSpaceManifestRootFND }

type ObjectSpaceManifestListReferenceFND struct {
	Ref   ChunkRef
	Gosid ExtendedGUID
}

func (ObjectSpaceManifestListReferenceFND) fileNodeKind() FileNodeKind {
	return NodeObjectSpaceManifestListReferenceFND
}

type ObjectSpaceManifestListStartFND struct {
	GosidRoot ExtendedGUID
}

func (ObjectSpaceManifestListStartFND) fileNodeKind() FileNodeKind {
	return NodeObjectSpaceManifestListStartFND
}

type RevisionManifestListReferenceFND struct {
	Ref ChunkRef
}

func (RevisionManifestListReferenceFND) fileNodeKind() FileNodeKind {
	return NodeRevisionManifestListReferenceFND
}

type RevisionManifestListStartFND struct {
	GosidRoot ExtendedGUID
	NInstance uint32
}

func (RevisionManifestListStartFND) fileNodeKind() FileNodeKind {
	return NodeRevisionManifestListStartFND
}

// RevisionManifestStart4FND is the oldest of the three manifest-start
// shapes: it carries an explicit creation timestamp that later formats drop.
type RevisionManifestStart4FND struct {
	Rid          ExtendedGUID
	RidDependent ExtendedGUID // zero GUID/zero N means "no dependency"
	TimeCreation time.Time
	RevisionRole uint32
	OdcsDefault  uint32
}

func (RevisionManifestStart4FND) fileNodeKind() FileNodeKind { return NodeRevisionManifestStart4FND }

type RevisionManifestStart6FND struct {
	Rid          ExtendedGUID
	RidDependent ExtendedGUID
	RevisionRole uint32
	OdcsDefault  uint32
}

func (RevisionManifestStart6FND) fileNodeKind() FileNodeKind { return NodeRevisionManifestStart6FND }

// RevisionManifestStart7FND adds an explicit context ID over Start6, letting
// a revision belong to a named context (used by version history, §4.N).
type RevisionManifestStart7FND struct {
	Rid          ExtendedGUID
	RidDependent ExtendedGUID
	RevisionRole uint32
	OdcsDefault  uint32
	Gctxid       ExtendedGUID
}

func (RevisionManifestStart7FND) fileNodeKind() FileNodeKind { return NodeRevisionManifestStart7FND }

type RevisionManifestEndFND struct{}

func (RevisionManifestEndFND) fileNodeKind() FileNodeKind { return NodeRevisionManifestEndFND }

type RevisionRoleDeclarationFND struct {
	Rid          ExtendedGUID
	RevisionRole uint32
}

func (RevisionRoleDeclarationFND) fileNodeKind() FileNodeKind { return NodeRevisionRoleDeclarationFND }

type RevisionRoleAndContextDeclarationFND struct {
	Rid          ExtendedGUID
	RevisionRole uint32
	Gctxid       ExtendedGUID
}

func (RevisionRoleAndContextDeclarationFND) fileNodeKind() FileNodeKind {
	return NodeRevisionRoleAndContextDeclarationFND
}

type GlobalIdTableStartFNDX struct{}

func (GlobalIdTableStartFNDX) fileNodeKind() FileNodeKind { return NodeGlobalIdTableStartFNDX }

type GlobalIdTableStart2FND struct{}

func (GlobalIdTableStart2FND) fileNodeKind() FileNodeKind { return NodeGlobalIdTableStart2FND }

// GlobalIdTableEntryFNDX assigns GUID directly to a table slot.
type GlobalIdTableEntryFNDX struct {
	Index uint32
	GUID  GUID
}

func (GlobalIdTableEntryFNDX) fileNodeKind() FileNodeKind { return NodeGlobalIdTableEntryFNDX }

// GlobalIdTableEntry2FNDX remaps a slot to the GUID currently held by
// another table (inherited from a dependent revision's table).
type GlobalIdTableEntry2FNDX struct {
	IIndexMapFrom uint32
	IIndexMapTo   uint32
}

func (GlobalIdTableEntry2FNDX) fileNodeKind() FileNodeKind { return NodeGlobalIdTableEntry2FNDX }

// GlobalIdTableEntry3FNDX bulk-copies a contiguous run of slots from the
// inherited table.
type GlobalIdTableEntry3FNDX struct {
	FromStart uint32
	Count     uint32
	ToStart   uint32
}

func (GlobalIdTableEntry3FNDX) fileNodeKind() FileNodeKind { return NodeGlobalIdTableEntry3FNDX }

type GlobalIdTableEndFNDX struct{}

func (GlobalIdTableEndFNDX) fileNodeKind() FileNodeKind { return NodeGlobalIdTableEndFNDX }

// ObjectDeclarationWithRefCountFNDX declares an object in the revision's own
// manifest (as opposed to inside an object group, see
// ObjectDeclaration2RefCountFND): Ref points at its property-set blob.
type ObjectDeclarationWithRefCountFNDX struct {
	Ref         ChunkRef
	Coid        CompactID
	JCID        JCID
	Odcs        uint8
	HasOidRefs  bool
	HasOsidRefs bool
	CRef        uint32
	wide        bool // true if decoded from the 2FNDX (32-bit CRef) variant
}

func (b ObjectDeclarationWithRefCountFNDX) fileNodeKind() FileNodeKind {
	if b.wide {
		return NodeObjectDeclarationWithRefCount2FNDX
	}
	return NodeObjectDeclarationWithRefCountFNDX
}

type ObjectRevisionWithRefCountFNDX struct {
	Ref         ChunkRef
	Coid        CompactID
	HasOidRefs  bool
	HasOsidRefs bool
	CRef        uint32
	wide        bool
}

func (b ObjectRevisionWithRefCountFNDX) fileNodeKind() FileNodeKind {
	if b.wide {
		return NodeObjectRevisionWithRefCount2FNDX
	}
	return NodeObjectRevisionWithRefCountFNDX
}

type RootObjectReference2FNDX struct {
	CoidRoot CompactID
	RootRole uint32
}

func (RootObjectReference2FNDX) fileNodeKind() FileNodeKind { return NodeRootObjectReference2FNDX }

type RootObjectReference3FND struct {
	OidRoot  ExtendedGUID
	RootRole uint32
}

func (RootObjectReference3FND) fileNodeKind() FileNodeKind { return NodeRootObjectReference3FND }

// ObjectDeclaration2RefCountFND declares an object inside an object group
// (§4.G), as opposed to directly in a revision manifest.
type ObjectDeclaration2RefCountFND struct {
	BlobRef     ChunkRef
	Coid        CompactID
	JCID        JCID
	HasOidRefs  bool
	HasOsidRefs bool
	CRef        uint32
	wide        bool
}

func (b ObjectDeclaration2RefCountFND) fileNodeKind() FileNodeKind {
	if b.wide {
		return NodeObjectDeclaration2LargeRefCountFND
	}
	return NodeObjectDeclaration2RefCountFND
}

// ReadOnlyObjectDeclaration2RefCountFND additionally carries the MD5 hash of
// its property-set blob's bytes, used for read-only object deduplication
// by content (§4.H Design Notes, §8 property 6).
type ReadOnlyObjectDeclaration2RefCountFND struct {
	BlobRef     ChunkRef
	Coid        CompactID
	JCID        JCID
	HasOidRefs  bool
	HasOsidRefs bool
	CRef        uint32
	Md5Hash     [16]byte
	wide        bool
}

func (b ReadOnlyObjectDeclaration2RefCountFND) fileNodeKind() FileNodeKind {
	if b.wide {
		return NodeReadOnlyObjectDeclaration2LargeRefCountFND
	}
	return NodeReadOnlyObjectDeclaration2RefCountFND
}

// ObjectDeclarationFileData3RefCountFND declares a file-data object: its
// payload lives outside the property-set system entirely, resolved through
// FileDataReference (§4.M).
type ObjectDeclarationFileData3RefCountFND struct {
	Coid              CompactID
	JCID              JCID
	CRef              uint32
	FileDataReference string
	Extension         string
	wide              bool
}

func (b ObjectDeclarationFileData3RefCountFND) fileNodeKind() FileNodeKind {
	if b.wide {
		return NodeObjectDeclarationFileData3LargeRefCountFND
	}
	return NodeObjectDeclarationFileData3RefCountFND
}

type ObjectGroupListReferenceFND struct {
	Ref  ChunkRef
	Ogid ExtendedGUID
}

func (ObjectGroupListReferenceFND) fileNodeKind() FileNodeKind { return NodeObjectGroupListReferenceFND }

type ObjectGroupStartFND struct {
	Ogid ExtendedGUID
}

func (ObjectGroupStartFND) fileNodeKind() FileNodeKind { return NodeObjectGroupStartFND }

type ObjectGroupEndFND struct{}

func (ObjectGroupEndFND) fileNodeKind() FileNodeKind { return NodeObjectGroupEndFND }

type DataSignatureGroupDefinitionFND struct {
	DataSignatureGroup ExtendedGUID
}

func (DataSignatureGroupDefinitionFND) fileNodeKind() FileNodeKind {
	return NodeDataSignatureGroupDefinitionFND
}

// ObjectInfoDependencyOverridesFND carries dependency-override records
// either inline (Ref is Nil: Overrides holds the raw bytes directly) or out
// of line via Ref. §9 Open Question: this decoder does not currently parse
// the override record structure itself, only locates its bytes; see
// DESIGN.md.
type ObjectInfoDependencyOverridesFND struct {
	Ref       ChunkRef
	Overrides []byte
}

func (ObjectInfoDependencyOverridesFND) fileNodeKind() FileNodeKind {
	return NodeObjectInfoDependencyOverridesFND
}

type HashedChunkDescriptor2FND struct {
	BlobRef  ChunkRef
	GuidHash GUID
}

func (HashedChunkDescriptor2FND) fileNodeKind() FileNodeKind { return NodeHashedChunkDescriptor2FND }

type FileDataStoreListReferenceFND struct {
	Ref ChunkRef
}

func (FileDataStoreListReferenceFND) fileNodeKind() FileNodeKind {
	return NodeFileDataStoreListReferenceFND
}

type FileDataStoreObjectReferenceFND struct {
	Ref           ChunkRef
	GuidReference GUID
}

func (FileDataStoreObjectReferenceFND) fileNodeKind() FileNodeKind {
	return NodeFileDataStoreObjectReferenceFND
}

type ObjectDataEncryptionKeyV2FNDX struct {
	Ref ChunkRef
}

func (ObjectDataEncryptionKeyV2FNDX) fileNodeKind() FileNodeKind {
	return NodeObjectDataEncryptionKeyV2FNDX
}

type ChunkTerminatorFND struct{}

func (ChunkTerminatorFND) fileNodeKind() FileNodeKind { return NodeChunkTerminatorFND }
