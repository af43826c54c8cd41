package store

import "fmt"

// encryptedOdcsDefault marks a revision whose object-group property sets
// must not be decoded (§4.H: "skip all object-group property-set decoding
// but still record the revision and its root references").
const encryptedOdcsDefault uint32 = 2

// Revision is one constructed point in an object space's revision history
// (§4.H): the union of its dependent's objects (if any) with whatever this
// revision's own nodes declared or replaced.
type Revision struct {
	Rid          ExtendedGUID
	RidDependent ExtendedGUID
	RevisionRole uint32
	OdcsDefault  uint32
	Gctxid       ExtendedGUID

	GlobalIDTable *GlobalIDTable
	Objects       map[ExtendedGUID]GroupObject
	RootObjects   map[uint32]ExtendedGUID // role -> oid

	Encrypted bool

	// lastAppliedTable is the most recently applied object group's table,
	// used to resolve a following RootObjectReference2FNDX (§4.H).
	lastAppliedTable *GlobalIDTable
}

// GroupNodesResolver walks the file-node list addressed by an
// ObjectGroupListReferenceFND's Ref (its own ObjectGroupStartFND …
// ObjectGroupEndFND region, magic-framed per §4.D) and returns the group's
// id plus its flattened body nodes (both markers excluded), ready for
// BuildObjectGroup.
type GroupNodesResolver func(ref ChunkRef) (groupID ExtendedGUID, body []FileNode, err error)

// BuildRevisionInput bundles everything BuildRevision needs beyond the
// node stream itself.
type BuildRevisionInput struct {
	// Nodes holds every node between (and excluding) the
	// RevisionManifestStart*FND and its RevisionManifestEndFND, in document
	// order, with nested object-group/global-id-table regions already
	// flattened in place by the caller's file-node-list walk.
	Nodes []FileNode

	// StartBody is the already-decoded RevisionManifestStart4/6/7FND body.
	StartBody interface {
		fileNodeKind() FileNodeKind
	}

	Dependent *Revision // nil if ridDependent is null

	ResolveGroup GroupNodesResolver
	ResolveBlob  func(ref ChunkRef) (*Reader, error)
}

// BuildRevision constructs a Revision per §4.H.
func BuildRevision(in BuildRevisionInput) (*Revision, error) {
	rev, err := newRevisionFromStart(in.StartBody)
	if err != nil {
		return nil, err
	}

	if !rev.RidDependent.IsZero() {
		if in.Dependent == nil {
			return nil, fmt.Errorf("revision %s: %w: dependent %s not yet built",
				rev.Rid, ErrRevisionMismatch, rev.RidDependent)
		}
		if in.Dependent.Rid != rev.RidDependent {
			return nil, fmt.Errorf("revision %s: %w: dependent mismatch (have %s, want %s)",
				rev.Rid, ErrRevisionMismatch, in.Dependent.Rid, rev.RidDependent)
		}
		if in.Dependent.OdcsDefault != rev.OdcsDefault {
			return nil, fmt.Errorf("revision %s: %w: odcsDefault %d != dependent's %d",
				rev.Rid, ErrRevisionMismatch, rev.OdcsDefault, in.Dependent.OdcsDefault)
		}
		for oid, obj := range in.Dependent.Objects {
			rev.Objects[oid] = obj
		}
	}
	rev.Encrypted = rev.OdcsDefault == encryptedOdcsDefault

	var dependentTable *GlobalIDTable
	if in.Dependent != nil {
		dependentTable = in.Dependent.GlobalIDTable
	}

	var lastGroupTable *GlobalIDTable
	tableStarted := false
	tableNodes := []FileNode{}

	for i := 0; i < len(in.Nodes); i++ {
		n := in.Nodes[i]

		if !tableStarted {
			switch b := n.Body.(type) {
			case GlobalIdTableStartFNDX, GlobalIdTableStart2FND:
				tableStarted = true
				tableNodes = append(tableNodes, n)
				continue
			case ObjectGroupListReferenceFND:
				if !rev.Encrypted {
					if err := rev.applyObjectGroup(b.Ref, in.ResolveGroup, in.ResolveBlob); err != nil {
						return nil, fmt.Errorf("revision %s: %w", rev.Rid, err)
					}
					lastGroupTable = rev.lastAppliedTable
				}
				continue
			case ObjectInfoDependencyOverridesFND:
				continue // located but not interpreted; see DESIGN.md
			case RootObjectReference2FNDX:
				if lastGroupTable == nil {
					return nil, fmt.Errorf("revision %s: %w: RootObjectReference2FNDX before any object group",
						rev.Rid, ErrUnexpectedFileNode)
				}
				oid, err := lastGroupTable.Lookup(b.CoidRoot)
				if err != nil {
					return nil, fmt.Errorf("revision %s: resolving root object: %w", rev.Rid, err)
				}
				rev.RootObjects[b.RootRole] = oid
				continue
			case ObjectDataEncryptionKeyV2FNDX:
				continue
			default:
				return nil, fmt.Errorf("revision %s: %w: %s before global ID table",
					rev.Rid, ErrUnexpectedFileNode, n.Header.Kind)
			}
		}

		if tableStarted && rev.GlobalIDTable == nil {
			tableNodes = append(tableNodes, n)
			if _, ok := n.Body.(GlobalIdTableEndFNDX); ok {
				table, err := BuildGlobalIDTable(dependentTable, tableNodes)
				if err != nil {
					return nil, fmt.Errorf("revision %s: global ID table: %w", rev.Rid, err)
				}
				rev.GlobalIDTable = table
			}
			continue
		}

		switch b := n.Body.(type) {
		case RootObjectReference3FND:
			rev.RootObjects[b.RootRole] = b.OidRoot
		case DataSignatureGroupDefinitionFND:
			// recorded at the group level; nothing revision-scoped to do
		case ObjectDeclarationWithRefCountFNDX:
			if err := rev.applyDirectDeclaration(b.Coid, b.JCID, b.Ref, in.ResolveBlob); err != nil {
				return nil, fmt.Errorf("revision %s: %w", rev.Rid, err)
			}
		case ObjectRevisionWithRefCountFNDX:
			if err := rev.applyObjectRevision(b.Coid, b.Ref, in.ResolveBlob); err != nil {
				return nil, fmt.Errorf("revision %s: %w", rev.Rid, err)
			}
		default:
			return nil, fmt.Errorf("revision %s: %w: %s after global ID table",
				rev.Rid, ErrUnexpectedFileNode, n.Header.Kind)
		}
	}

	if rev.GlobalIDTable == nil {
		rev.GlobalIDTable = NewGlobalIDTable()
	}
	return rev, nil
}

func newRevisionFromStart(body interface{ fileNodeKind() FileNodeKind }) (*Revision, error) {
	rev := &Revision{Objects: make(map[ExtendedGUID]GroupObject), RootObjects: make(map[uint32]ExtendedGUID)}
	switch b := body.(type) {
	case RevisionManifestStart4FND:
		rev.Rid, rev.RidDependent, rev.RevisionRole, rev.OdcsDefault = b.Rid, b.RidDependent, b.RevisionRole, b.OdcsDefault
	case RevisionManifestStart6FND:
		rev.Rid, rev.RidDependent, rev.RevisionRole, rev.OdcsDefault = b.Rid, b.RidDependent, b.RevisionRole, b.OdcsDefault
	case RevisionManifestStart7FND:
		rev.Rid, rev.RidDependent, rev.RevisionRole, rev.OdcsDefault = b.Rid, b.RidDependent, b.RevisionRole, b.OdcsDefault
		rev.Gctxid = b.Gctxid
	default:
		return nil, fmt.Errorf("revision: %w: body is not a RevisionManifestStart* node", ErrUnexpectedFileNode)
	}
	return rev, nil
}

func (rev *Revision) applyObjectGroup(ref ChunkRef, resolve GroupNodesResolver, resolveBlob func(ChunkRef) (*Reader, error)) error {
	groupID, nodes, err := resolve(ref)
	if err != nil {
		return fmt.Errorf("object group %s: %w", ref, err)
	}
	group, err := BuildObjectGroup(groupID, nodes, resolveBlob)
	if err != nil {
		return err
	}
	for oid, obj := range group.Objects {
		rev.Objects[oid] = obj
	}
	rev.lastAppliedTable = group.Table
	return nil
}

func (rev *Revision) applyDirectDeclaration(coid CompactID, jcid JCID, ref ChunkRef, resolveBlob func(ChunkRef) (*Reader, error)) error {
	if rev.GlobalIDTable == nil {
		return fmt.Errorf("%w: direct object declaration before global ID table built", ErrUnexpectedFileNode)
	}
	oid, err := rev.GlobalIDTable.Lookup(coid)
	if err != nil {
		return fmt.Errorf("resolving coid: %w", err)
	}
	obj := GroupObject{JCID: jcid, ResolveOID: rev.GlobalIDTable.Lookup}
	if !rev.Encrypted {
		ps, err := readBlobPropertySet(ref, resolveBlob)
		if err != nil {
			return err
		}
		obj.PropertySet = ps
	}
	rev.Objects[oid] = obj
	return nil
}

func (rev *Revision) applyObjectRevision(coid CompactID, ref ChunkRef, resolveBlob func(ChunkRef) (*Reader, error)) error {
	if rev.GlobalIDTable == nil {
		return fmt.Errorf("%w: object revision node before global ID table built", ErrUnexpectedFileNode)
	}
	oid, err := rev.GlobalIDTable.Lookup(coid)
	if err != nil {
		return fmt.Errorf("resolving coid: %w", err)
	}
	prior, ok := rev.Objects[oid]
	if !ok {
		return fmt.Errorf("%w: object revision for %s with no prior declaration", ErrObjectNotFound, oid)
	}
	updated := GroupObject{JCID: prior.JCID, ResolveOID: rev.GlobalIDTable.Lookup}
	if !rev.Encrypted {
		ps, err := readBlobPropertySet(ref, resolveBlob)
		if err != nil {
			return err
		}
		updated.PropertySet = ps
	}
	rev.Objects[oid] = updated
	return nil
}

func readBlobPropertySet(ref ChunkRef, resolveBlob func(ChunkRef) (*Reader, error)) (PropertySet, error) {
	r, err := resolveBlob(ref)
	if err != nil {
		return PropertySet{}, fmt.Errorf("resolving blob %s: %w", ref, err)
	}
	return ReadPropertySet(r)
}
