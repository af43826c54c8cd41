package store

import "fmt"

// GroupObject is one object declared inside an object group: its schema
// tag and parsed property set, keyed by ExtendedGUID once resolved (§4.G).
type GroupObject struct {
	JCID        JCID
	PropertySet PropertySet
	Md5Hash     [16]byte // set only for read-only declarations
	IsReadOnly  bool

	FileDataReference string // set only for ObjectDeclarationFileData3* declarations
	FileDataExtension string
	IsFileData        bool

	// ResolveOID resolves a CompactID found in this object's own property
	// set to the ExtendedGUID it names, using whichever table was active
	// when the property set was decoded (the group's table, or the
	// revision's table for a direct declaration): "every CompactID read
	// within an object group resolves against that group's table; every
	// CompactID read within a revision outside a group resolves against
	// the revision's table" (§3 invariants).
	ResolveOID func(CompactID) (ExtendedGUID, error)
}

// ObjectGroup is the realized contents of one ObjectGroupStartFND …
// ObjectGroupEndFND region: an inline global ID table plus the objects its
// declaration nodes contributed, keyed by resolved ExtendedGUID.
type ObjectGroup struct {
	GroupID ExtendedGUID
	Table   *GlobalIDTable
	Objects map[ExtendedGUID]GroupObject

	// SignatureDefinitions captures any DataSignatureGroupDefinitionFND seen.
	SignatureDefinitions []ExtendedGUID
}

// BuildObjectGroup interprets the nodes between an ObjectGroupStartFND and
// its ObjectGroupEndFND (both excluded from nodes; groupID comes from the
// Start node). source resolves a ChunkRef to a Reader over a property-set
// blob, addressed the same way the file-node-list iterator's source is.
func BuildObjectGroup(groupID ExtendedGUID, nodes []FileNode, source func(ref ChunkRef) (*Reader, error)) (*ObjectGroup, error) {
	g := &ObjectGroup{GroupID: groupID, Objects: make(map[ExtendedGUID]GroupObject)}

	if len(nodes) == 0 {
		return nil, fmt.Errorf("objectgroup: %w: empty group %s", ErrUnexpectedFileNode, groupID)
	}

	// The first non-terminator node must begin an inline global ID table.
	tableEnd := -1
	switch nodes[0].Body.(type) {
	case GlobalIdTableStart2FND, GlobalIdTableStartFNDX:
	default:
		return nil, fmt.Errorf("objectgroup: %w: group %s does not open with a global ID table",
			ErrUnexpectedFileNode, groupID)
	}
	for i, n := range nodes {
		if _, ok := n.Body.(GlobalIdTableEndFNDX); ok {
			tableEnd = i
			break
		}
	}
	if tableEnd < 0 {
		return nil, fmt.Errorf("objectgroup: %w: group %s global ID table never ends", ErrUnexpectedFileNode, groupID)
	}

	table, err := BuildGlobalIDTable(nil, nodes[:tableEnd+1])
	if err != nil {
		return nil, fmt.Errorf("objectgroup: %s: %w", groupID, err)
	}
	g.Table = table

	for _, n := range nodes[tableEnd+1:] {
		if err := g.applyDeclaration(n, source); err != nil {
			return nil, fmt.Errorf("objectgroup: %s: %w", groupID, err)
		}
	}
	return g, nil
}

func (g *ObjectGroup) applyDeclaration(n FileNode, source func(ref ChunkRef) (*Reader, error)) error {
	switch b := n.Body.(type) {
	case DataSignatureGroupDefinitionFND:
		g.SignatureDefinitions = append(g.SignatureDefinitions, b.DataSignatureGroup)
		return nil

	case ObjectDeclaration2RefCountFND:
		oid, err := g.Table.Lookup(b.Coid)
		if err != nil {
			return fmt.Errorf("object declaration: resolving coid: %w", err)
		}
		ps, err := g.readPropertySet(b.BlobRef, source)
		if err != nil {
			return err
		}
		g.Objects[oid] = GroupObject{JCID: b.JCID, PropertySet: ps, ResolveOID: g.Table.Lookup}
		return nil

	case ReadOnlyObjectDeclaration2RefCountFND:
		oid, err := g.Table.Lookup(b.Coid)
		if err != nil {
			return fmt.Errorf("read-only object declaration: resolving coid: %w", err)
		}
		ps, err := g.readPropertySet(b.BlobRef, source)
		if err != nil {
			return err
		}
		g.Objects[oid] = GroupObject{
			JCID: b.JCID, PropertySet: ps, Md5Hash: b.Md5Hash, IsReadOnly: true, ResolveOID: g.Table.Lookup,
		}
		return nil

	case ObjectDeclarationFileData3RefCountFND:
		oid, err := g.Table.Lookup(b.Coid)
		if err != nil {
			return fmt.Errorf("file data declaration: resolving coid: %w", err)
		}
		g.Objects[oid] = GroupObject{
			JCID: b.JCID, IsFileData: true,
			FileDataReference: b.FileDataReference, FileDataExtension: b.Extension,
		}
		return nil

	case GlobalIdTableStartFNDX, GlobalIdTableStart2FND, GlobalIdTableEntryFNDX,
		GlobalIdTableEntry2FNDX, GlobalIdTableEntry3FNDX, GlobalIdTableEndFNDX:
		return fmt.Errorf("objectgroup: %w: table node after table close", ErrUnexpectedFileNode)

	default:
		return fmt.Errorf("objectgroup: %w: %s not valid as a group declaration", ErrUnexpectedFileNode, n.Header.Kind)
	}
}

func (g *ObjectGroup) readPropertySet(ref ChunkRef, source func(ref ChunkRef) (*Reader, error)) (PropertySet, error) {
	r, err := source(ref)
	if err != nil {
		return PropertySet{}, fmt.Errorf("object declaration: resolving blob %s: %w", ref, err)
	}
	return ReadPropertySet(r)
}
