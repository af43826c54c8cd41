package store

import (
	"fmt"
	"unicode/utf16"

	"github.com/joshuapare/onekit/pkg/types"
)

// FileNodeBody is implemented by every file-node variant's payload struct.
// It exists only to give the type switch in consumers (component D/G/H
// callers) something to match on; it carries no behavior of its own.
type FileNodeBody interface {
	fileNodeKind() FileNodeKind
}

// FileNode is one decoded file-node: its header, the chunk reference it
// embeds (if any, per BaseType), and its typed body.
type FileNode struct {
	Header FileNodeHeader
	Ref    ChunkRef // zero value when Header.BaseType == 0
	Body   FileNodeBody
}

// AllowedNodes restricts which FileNodeKinds may legally appear in a given
// traversal context (§4.C: UnexpectedFileNode). A nil set means "no
// restriction" (used only at the lowest level, by tests).
type AllowedNodes map[FileNodeKind]bool

// NewAllowedNodes builds an AllowedNodes set from a list of kinds. The chunk
// terminator is always implicitly allowed, per §4.C.
func NewAllowedNodes(kinds ...FileNodeKind) AllowedNodes {
	s := make(AllowedNodes, len(kinds)+1)
	for _, k := range kinds {
		s[k] = true
	}
	s[NodeChunkTerminatorFND] = true
	return s
}

// DecodeFileNode reads one file node from r: its header, its chunk reference
// (if BaseType calls for one), and its typed body, then verifies the
// post-condition that the reader ended up exactly at startOffset+Size (§4.C,
// §8 property 2).
//
// A header with Valid == false is returned as a FileNode with a nil Body;
// callers must check Header.Valid before doing anything else with the
// result — per §4.D, this terminates the enclosing list.
func DecodeFileNode(r *Reader, allowed AllowedNodes) (FileNode, error) {
	startOffset := r.Offset()
	h, err := DecodeFileNodeHeader(r)
	if err != nil {
		return FileNode{}, err
	}
	if !h.Valid {
		return FileNode{Header: h}, nil
	}

	wantBaseType, known := baseTypeOf[h.Kind]
	if !known {
		return FileNode{}, types.New(types.ErrKindUnrecognizedFileNode,
			fmt.Sprintf("nodeID 0x%X at offset %d", uint16(h.Kind), startOffset), nil)
	}
	if wantBaseType != h.BaseType {
		return FileNode{}, types.New(types.ErrKindBaseTypeMismatch,
			fmt.Sprintf("%s: header baseType %d, variant requires %d", h.Kind, h.BaseType, wantBaseType), nil)
	}
	if allowed != nil && !allowed[h.Kind] {
		return FileNode{}, types.New(types.ErrKindUnexpectedFileNode,
			fmt.Sprintf("%s not permitted in this context", h.Kind), nil)
	}

	var ref ChunkRef
	if h.BaseType == 1 || h.BaseType == 2 {
		ref, err = ReadChunkRef(r, h.StpFormat, h.CbFormat)
		if err != nil {
			return FileNode{}, fmt.Errorf("%s: chunk reference: %w", h.Kind, err)
		}
	}

	body, err := decodeFileNodeBody(r, h, ref)
	if err != nil {
		return FileNode{}, fmt.Errorf("%s: %w", h.Kind, err)
	}

	endOffset := startOffset + int(h.Size)
	if r.Offset() != endOffset {
		return FileNode{}, fmt.Errorf("%s: %w: body ended at %d, header declared end %d",
			h.Kind, ErrTruncated, r.Offset(), endOffset)
	}
	return FileNode{Header: h, Ref: ref, Body: body}, nil
}

func readExtendedGUIDRaw(r *Reader) (ExtendedGUID, error) {
	gb, err := r.Bytes(16)
	if err != nil {
		return ExtendedGUID{}, err
	}
	g, err := ParseGUID(gb)
	if err != nil {
		return ExtendedGUID{}, err
	}
	n, err := r.U32()
	if err != nil {
		return ExtendedGUID{}, err
	}
	return ExtendedGUID{GUID: g, N: n}, nil
}

// readLengthPrefixedUTF16 reads a u32 character count followed by that many
// UTF-16LE code units, decoding surrogate pairs and stopping at an embedded
// NUL terminator if present (the on-disk strings in ObjectDeclarationFileData3
// are NUL-padded to a fixed allocation in some producers).
func readLengthPrefixedUTF16(r *Reader) (string, error) {
	count, err := r.U32()
	if err != nil {
		return "", err
	}
	units := make([]uint16, 0, count)
	for i := uint32(0); i < count; i++ {
		u, err := r.U16()
		if err != nil {
			return "", err
		}
		if u == 0 {
			// NUL terminator: consume the rest silently (fixed-size field).
			for j := i + 1; j < count; j++ {
				if _, err := r.U16(); err != nil {
					return "", err
				}
			}
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

func decodeFileNodeBody(r *Reader, h FileNodeHeader, ref ChunkRef) (FileNodeBody, error) {
	switch h.Kind {
	case NodeObjectSpaceManifestRootFND:
		g, err := readExtendedGUIDRaw(r)
		return ObjectSpaceManifestRootFND{GosidRoot: g}, err

	case NodeObjectSpaceManifestListReferenceFND:
		g, err := readExtendedGUIDRaw(r)
		return ObjectSpaceManifestListReferenceFND{Ref: ref, Gosid: g}, err

	case NodeObjectSpaceManifestListStartFND:
		g, err := readExtendedGUIDRaw(r)
		return ObjectSpaceManifestListStartFND{GosidRoot: g}, err

	case NodeRevisionManifestListReferenceFND:
		return RevisionManifestListReferenceFND{Ref: ref}, nil

	case NodeRevisionManifestListStartFND:
		g, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		n, err := r.U32()
		return RevisionManifestListStartFND{GosidRoot: g, NInstance: n}, err

	case NodeRevisionManifestStart4FND:
		rid, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		dep, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		tc, err := r.ReadFiletime()
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		if err != nil {
			return nil, err
		}
		odcs, err := r.U32()
		return RevisionManifestStart4FND{Rid: rid, RidDependent: dep, TimeCreation: tc, RevisionRole: role, OdcsDefault: odcs}, err

	case NodeRevisionManifestStart6FND:
		rid, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		dep, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		if err != nil {
			return nil, err
		}
		odcs, err := r.U32()
		return RevisionManifestStart6FND{Rid: rid, RidDependent: dep, RevisionRole: role, OdcsDefault: odcs}, err

	case NodeRevisionManifestStart7FND:
		rid, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		dep, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		if err != nil {
			return nil, err
		}
		odcs, err := r.U32()
		if err != nil {
			return nil, err
		}
		ctx, err := readExtendedGUIDRaw(r)
		return RevisionManifestStart7FND{Rid: rid, RidDependent: dep, RevisionRole: role, OdcsDefault: odcs, Gctxid: ctx}, err

	case NodeRevisionManifestEndFND:
		return RevisionManifestEndFND{}, nil

	case NodeRevisionRoleDeclarationFND:
		rid, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		return RevisionRoleDeclarationFND{Rid: rid, RevisionRole: role}, err

	case NodeRevisionRoleAndContextDeclarationFND:
		rid, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		if err != nil {
			return nil, err
		}
		ctx, err := readExtendedGUIDRaw(r)
		return RevisionRoleAndContextDeclarationFND{Rid: rid, RevisionRole: role, Gctxid: ctx}, err

	case NodeGlobalIdTableStartFNDX:
		return GlobalIdTableStartFNDX{}, nil
	case NodeGlobalIdTableStart2FND:
		return GlobalIdTableStart2FND{}, nil
	case NodeGlobalIdTableEndFNDX:
		return GlobalIdTableEndFNDX{}, nil

	case NodeGlobalIdTableEntryFNDX:
		idx, err := r.U32()
		if err != nil {
			return nil, err
		}
		gb, err := r.Bytes(16)
		if err != nil {
			return nil, err
		}
		g, err := ParseGUID(gb)
		return GlobalIdTableEntryFNDX{Index: idx, GUID: g}, err

	case NodeGlobalIdTableEntry2FNDX:
		from, err := r.U32()
		if err != nil {
			return nil, err
		}
		to, err := r.U32()
		return GlobalIdTableEntry2FNDX{IIndexMapFrom: from, IIndexMapTo: to}, err

	case NodeGlobalIdTableEntry3FNDX:
		fromStart, err := r.U32()
		if err != nil {
			return nil, err
		}
		count, err := r.U32()
		if err != nil {
			return nil, err
		}
		toStart, err := r.U32()
		return GlobalIdTableEntry3FNDX{FromStart: fromStart, Count: count, ToStart: toStart}, err

	case NodeObjectDeclarationWithRefCountFNDX, NodeObjectDeclarationWithRefCount2FNDX:
		coid, jcid, odcs, hasOid, hasOsid, err := readDeclarationHeader(r)
		if err != nil {
			return nil, err
		}
		cref, err := readRefCount(r, h.Kind == NodeObjectDeclarationWithRefCount2FNDX)
		if err != nil {
			return nil, err
		}
		return ObjectDeclarationWithRefCountFNDX{
			Ref: ref, Coid: coid, JCID: jcid, Odcs: odcs, HasOidRefs: hasOid, HasOsidRefs: hasOsid, CRef: cref,
			wide: h.Kind == NodeObjectDeclarationWithRefCount2FNDX,
		}, nil

	case NodeObjectRevisionWithRefCountFNDX, NodeObjectRevisionWithRefCount2FNDX:
		coid, err := r.ReadCompactID()
		if err != nil {
			return nil, err
		}
		flags, err := r.U8()
		if err != nil {
			return nil, err
		}
		cref, err := readRefCount(r, h.Kind == NodeObjectRevisionWithRefCount2FNDX)
		if err != nil {
			return nil, err
		}
		return ObjectRevisionWithRefCountFNDX{
			Ref: ref, Coid: coid, HasOidRefs: flags&0x1 != 0, HasOsidRefs: flags&0x2 != 0, CRef: cref,
			wide: h.Kind == NodeObjectRevisionWithRefCount2FNDX,
		}, nil

	case NodeRootObjectReference2FNDX:
		coid, err := r.ReadCompactID()
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		return RootObjectReference2FNDX{CoidRoot: coid, RootRole: role}, err

	case NodeRootObjectReference3FND:
		oid, err := readExtendedGUIDRaw(r)
		if err != nil {
			return nil, err
		}
		role, err := r.U32()
		return RootObjectReference3FND{OidRoot: oid, RootRole: role}, err

	case NodeObjectDeclaration2RefCountFND, NodeObjectDeclaration2LargeRefCountFND:
		coid, jcid, _, hasOid, hasOsid, err := readDeclarationHeader(r)
		if err != nil {
			return nil, err
		}
		cref, err := readRefCount(r, h.Kind == NodeObjectDeclaration2LargeRefCountFND)
		if err != nil {
			return nil, err
		}
		return ObjectDeclaration2RefCountFND{
			BlobRef: ref, Coid: coid, JCID: jcid, HasOidRefs: hasOid, HasOsidRefs: hasOsid, CRef: cref,
			wide: h.Kind == NodeObjectDeclaration2LargeRefCountFND,
		}, nil

	case NodeReadOnlyObjectDeclaration2RefCountFND, NodeReadOnlyObjectDeclaration2LargeRefCountFND:
		coid, jcid, _, hasOid, hasOsid, err := readDeclarationHeader(r)
		if err != nil {
			return nil, err
		}
		cref, err := readRefCount(r, h.Kind == NodeReadOnlyObjectDeclaration2LargeRefCountFND)
		if err != nil {
			return nil, err
		}
		if !jcid.IsPropertySet() || !jcid.IsReadOnly() {
			return nil, types.New(types.ErrKindUnexpectedFileNode,
				fmt.Sprintf("read-only object declaration jcid 0x%X lacks IsPropertySet|IsReadOnly", uint32(jcid)), nil)
		}
		md5, err := r.Bytes(16)
		if err != nil {
			return nil, err
		}
		var hash [16]byte
		copy(hash[:], md5)
		return ReadOnlyObjectDeclaration2RefCountFND{
			BlobRef: ref, Coid: coid, JCID: jcid, HasOidRefs: hasOid, HasOsidRefs: hasOsid, CRef: cref, Md5Hash: hash,
			wide: h.Kind == NodeReadOnlyObjectDeclaration2LargeRefCountFND,
		}, nil

	case NodeObjectDeclarationFileData3RefCountFND, NodeObjectDeclarationFileData3LargeRefCountFND:
		coid, err := r.ReadCompactID()
		if err != nil {
			return nil, err
		}
		jcid, err := r.ReadJCID()
		if err != nil {
			return nil, err
		}
		cref, err := readRefCount(r, h.Kind == NodeObjectDeclarationFileData3LargeRefCountFND)
		if err != nil {
			return nil, err
		}
		fdr, err := readLengthPrefixedUTF16(r)
		if err != nil {
			return nil, err
		}
		ext, err := readLengthPrefixedUTF16(r)
		if err != nil {
			return nil, err
		}
		return ObjectDeclarationFileData3RefCountFND{
			Coid: coid, JCID: jcid, CRef: cref, FileDataReference: fdr, Extension: ext,
			wide: h.Kind == NodeObjectDeclarationFileData3LargeRefCountFND,
		}, nil

	case NodeObjectGroupListReferenceFND:
		g, err := readExtendedGUIDRaw(r)
		return ObjectGroupListReferenceFND{Ref: ref, Ogid: g}, err

	case NodeObjectGroupStartFND:
		g, err := readExtendedGUIDRaw(r)
		return ObjectGroupStartFND{Ogid: g}, err

	case NodeObjectGroupEndFND:
		return ObjectGroupEndFND{}, nil

	case NodeDataSignatureGroupDefinitionFND:
		g, err := readExtendedGUIDRaw(r)
		return DataSignatureGroupDefinitionFND{DataSignatureGroup: g}, err

	case NodeObjectInfoDependencyOverridesFND:
		var overrides []byte
		if ref.IsNil() {
			rest, err := r.Bytes(r.Remaining())
			if err != nil {
				return nil, err
			}
			overrides = rest
		}
		return ObjectInfoDependencyOverridesFND{Ref: ref, Overrides: overrides}, nil

	case NodeHashedChunkDescriptor2FND:
		gb, err := r.Bytes(16)
		if err != nil {
			return nil, err
		}
		g, err := ParseGUID(gb)
		return HashedChunkDescriptor2FND{BlobRef: ref, GuidHash: g}, err

	case NodeFileDataStoreListReferenceFND:
		return FileDataStoreListReferenceFND{Ref: ref}, nil

	case NodeFileDataStoreObjectReferenceFND:
		gb, err := r.Bytes(16)
		if err != nil {
			return nil, err
		}
		g, err := ParseGUID(gb)
		return FileDataStoreObjectReferenceFND{Ref: ref, GuidReference: g}, err

	case NodeObjectDataEncryptionKeyV2FNDX:
		return ObjectDataEncryptionKeyV2FNDX{Ref: ref}, nil

	case NodeChunkTerminatorFND:
		return ChunkTerminatorFND{}, nil

	default:
		return nil, types.New(types.ErrKindUnrecognizedFileNode, fmt.Sprintf("0x%X", uint16(h.Kind)), nil)
	}
}

// readDeclarationHeader reads the common {coid, jcid, odcs:2,
// hasOidRefs:1, hasOsidRefs:1} word shared by the ObjectDeclaration*
// variants: a CompactID, a JCID, then one flags byte.
func readDeclarationHeader(r *Reader) (coid CompactID, jcid JCID, odcs uint8, hasOid, hasOsid bool, err error) {
	coid, err = r.ReadCompactID()
	if err != nil {
		return
	}
	jcid, err = r.ReadJCID()
	if err != nil {
		return
	}
	flags, err := r.U8()
	if err != nil {
		return
	}
	odcs = (flags >> 2) & 0x3
	hasOid = flags&0x1 != 0
	hasOsid = flags&0x2 != 0
	return
}

// readRefCount reads an 8-bit or 32-bit reference count depending on which
// "2"/"Large" variant of a node is being decoded.
func readRefCount(r *Reader, wide bool) (uint32, error) {
	if wide {
		return r.U32()
	}
	v, err := r.U8()
	return uint32(v), err
}
