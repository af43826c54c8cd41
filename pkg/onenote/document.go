package onenote

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joshuapare/onekit/internal/mmfile"
	"github.com/joshuapare/onekit/pkg/types"
	"github.com/joshuapare/onekit/store"
)

// objectSpaceListAllowed restricts an object space's own file-node list to
// the nodes §4.I names at that level.
var objectSpaceListAllowed = store.NewAllowedNodes(
	store.NodeObjectSpaceManifestListStartFND,
	store.NodeRevisionManifestListReferenceFND,
)

// revisionListAllowed restricts the file-node list a RevisionManifestList
// reference points at to the nodes that can appear between (and around)
// RevisionManifestStart*/End spans (§4.H, §4.I).
var revisionListAllowed = store.NewAllowedNodes(
	store.NodeRevisionRoleDeclarationFND,
	store.NodeRevisionRoleAndContextDeclarationFND,
	store.NodeRevisionManifestStart4FND,
	store.NodeRevisionManifestStart6FND,
	store.NodeRevisionManifestStart7FND,
	store.NodeRevisionManifestEndFND,
	store.NodeGlobalIdTableStartFNDX,
	store.NodeGlobalIdTableStart2FND,
	store.NodeGlobalIdTableEntryFNDX,
	store.NodeGlobalIdTableEntry2FNDX,
	store.NodeGlobalIdTableEntry3FNDX,
	store.NodeGlobalIdTableEndFNDX,
	store.NodeObjectGroupListReferenceFND,
	store.NodeObjectInfoDependencyOverridesFND,
	store.NodeRootObjectReference2FNDX,
	store.NodeRootObjectReference3FND,
	store.NodeObjectDataEncryptionKeyV2FNDX,
	store.NodeDataSignatureGroupDefinitionFND,
	store.NodeObjectDeclarationWithRefCountFNDX,
	store.NodeObjectRevisionWithRefCountFNDX,
)

// objectGroupAllowed restricts an object group's own file-node list to the
// nodes that can appear inside one ObjectGroupStartFND … ObjectGroupEndFND
// region (§4.D, §4.G).
var objectGroupAllowed = store.NewAllowedNodes(
	store.NodeObjectGroupStartFND,
	store.NodeObjectGroupEndFND,
	store.NodeGlobalIdTableStartFNDX,
	store.NodeGlobalIdTableStart2FND,
	store.NodeGlobalIdTableEntryFNDX,
	store.NodeGlobalIdTableEntry2FNDX,
	store.NodeGlobalIdTableEntry3FNDX,
	store.NodeGlobalIdTableEndFNDX,
	store.NodeObjectDeclaration2RefCountFND,
	store.NodeObjectDeclaration2LargeRefCountFND,
	store.NodeReadOnlyObjectDeclaration2RefCountFND,
	store.NodeReadOnlyObjectDeclaration2LargeRefCountFND,
	store.NodeObjectDeclarationFileData3RefCountFND,
	store.NodeObjectDeclarationFileData3LargeRefCountFND,
	store.NodeDataSignatureGroupDefinitionFND,
)

// rootFileListAllowed mirrors store's own rootAllowedNodes; duplicated here
// because that set is unexported (§4.J).
var rootFileListAllowed = store.NewAllowedNodes(
	store.NodeObjectSpaceManifestRootFND,
	store.NodeObjectSpaceManifestListReferenceFND,
	store.NodeFileDataStoreListReferenceFND,
)

// Document is the decoded, navigable form of one .one/.onetoc2 file (§6).
type Document struct {
	file          *store.OneStoreFile
	source        func(store.ChunkRef) (*store.Reader, error)
	fileDataStore *FileDataStore
	sectionDir    string
	sectionName   string
	cleanup       func() error
}

// Open memory-maps path, decodes its header and full object-space/revision
// graph, and returns a Document ready for typed-tree traversal (§4.J, §6).
func Open(path string) (*Document, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("onenote: open %q: %w", path, err)
	}

	source := sliceSource(data)
	r := store.NewReader(data)
	header, err := store.ReadHeader(r)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("onenote: %q: %w", path, err)
	}

	rootRef := store.ChunkRef{Stp: header.FcrFileNodeListRoot.Stp, Cb: uint64(header.FcrFileNodeListRoot.Cb)}
	rootNodes, err := readNodeList(source, rootRef, rootFileListAllowed)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("onenote: %q: %w", path, err)
	}

	file, err := store.BuildOneStoreFile(header, rootNodes, func(ref store.ChunkRef) (*store.ObjectSpace, error) {
		return buildObjectSpace(ref, source)
	})
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("onenote: %q: %w", path, err)
	}
	for gosid, space := range file.ObjectSpaces {
		space.Gosid = gosid
	}

	fds, err := BuildFileDataStore(file.FileDataStoreRef, source)
	if err != nil {
		_ = cleanup()
		return nil, fmt.Errorf("onenote: %q: %w", path, err)
	}

	sectionDir := filepath.Dir(path)
	base := filepath.Base(path)
	sectionName := strings.TrimSuffix(base, filepath.Ext(base))

	return &Document{
		file: file, source: source, fileDataStore: fds,
		sectionDir: sectionDir, sectionName: sectionName, cleanup: cleanup,
	}, nil
}

// Close releases the underlying memory mapping.
func (d *Document) Close() error {
	if d.cleanup == nil {
		return nil
	}
	return d.cleanup()
}

// RootObjectSpaceID returns the file's designated root object space (§6).
func (d *Document) RootObjectSpaceID() store.ExtendedGUID { return d.file.RootObjectSpaceID }

// ObjectSpace looks up one object space by its gosid.
func (d *Document) ObjectSpace(gosid store.ExtendedGUID) (*store.ObjectSpace, bool) {
	s, ok := d.file.ObjectSpaces[gosid]
	return s, ok
}

// ObjectSpaces returns every decoded object space (§6:
// "oneStore.objectSpaces() → iterable<(ExtendedGUID, objectSpace)>").
func (d *Document) ObjectSpaces() map[store.ExtendedGUID]*store.ObjectSpace {
	return d.file.ObjectSpaces
}

// FileDataResolver returns a resolver bound to this document's sidecar
// folder and internal file-data store (§4.M).
func (d *Document) FileDataResolver() FileDataResolver {
	return NewFileDataResolver(d.sectionDir, d.sectionName, d.fileDataStore, d.source)
}

// RootObject builds the typed object tree rooted at revision's declared
// root for role, at the requested verbosity (§4.K, §6: "revision.rootObject(role)").
// ctx bounds file-data resolution for callers embedding the decoder in a
// server; pass context.Background() for a one-shot CLI invocation.
func (d *Document) RootObject(ctx context.Context, rev *store.Revision, role types.RootRole, verbosity int) (*Node, error) {
	oid, ok := rev.RootObjects[uint32(role)]
	if !ok {
		return nil, fmt.Errorf("onenote: %w: revision %s has no root for role %s", store.ErrObjectNotFound, rev.Rid, role)
	}
	bc := NewBuildContext(rev.Objects, verbosity, d.FileDataResolver())
	return bc.Build(ctx, oid)
}

// VersionHistory computes the root object space's version-history snapshot
// sequence (§4.N).
func (d *Document) VersionHistory() ([]Snapshot, error) {
	return BuildVersionHistory(d.file)
}

// sliceSource builds a ChunkRef resolver directly over an in-memory byte
// slab: every blob read (property-set values, file-node-list fragments,
// file-data-store blobs) in this decoder addresses the same underlying
// file, so one function serves all of them (§5: "sub-readers are cheap
// views over that immutable slab").
func sliceSource(data []byte) func(store.ChunkRef) (*store.Reader, error) {
	return func(ref store.ChunkRef) (*store.Reader, error) {
		if ref.IsNil() {
			return nil, fmt.Errorf("onenote: %w: nil chunk reference", store.ErrArgument)
		}
		start := ref.Stp
		end := start + ref.Cb
		if end > uint64(len(data)) || start > end {
			return nil, fmt.Errorf("onenote: %w: chunk ref %s out of bounds (file is %d bytes)",
				store.ErrTruncated, ref, len(data))
		}
		return store.NewReader(data[start:end]), nil
	}
}

func readNodeList(source func(store.ChunkRef) (*store.Reader, error), ref store.ChunkRef, allowed store.AllowedNodes) ([]store.FileNode, error) {
	it, err := store.NewFileNodeListIterator(source, ref, allowed)
	if err != nil {
		return nil, err
	}
	var nodes []store.FileNode
	for {
		n, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// buildObjectSpace realizes one object space from its own file-node list:
// it accepts one or more RevisionManifestListReferenceFND (the last wins),
// then walks the referenced list constructing revisions in document order
// (§4.I).
func buildObjectSpace(ref store.ChunkRef, source func(store.ChunkRef) (*store.Reader, error)) (*store.ObjectSpace, error) {
	nodes, err := readNodeList(source, ref, objectSpaceListAllowed)
	if err != nil {
		return nil, fmt.Errorf("object space: %w", err)
	}

	space := store.NewObjectSpace(store.NilExtendedGUID)
	revListRef := store.NilChunkRef
	for _, n := range nodes {
		if b, ok := n.Body.(store.RevisionManifestListReferenceFND); ok {
			revListRef = b.Ref
		}
	}
	if revListRef.IsNil() {
		return space, nil
	}

	revNodes, err := readNodeList(source, revListRef, revisionListAllowed)
	if err != nil {
		return nil, fmt.Errorf("object space: revision manifest list: %w", err)
	}

	var spanStart store.FileNodeBody
	var spanBody []store.FileNode
	for _, n := range revNodes {
		switch b := n.Body.(type) {
		case store.RevisionRoleDeclarationFND, store.RevisionRoleAndContextDeclarationFND:
			if err := space.ApplyRoleDeclaration(n.Body); err != nil {
				return nil, fmt.Errorf("object space: %w", err)
			}
		case store.RevisionManifestStart4FND, store.RevisionManifestStart6FND, store.RevisionManifestStart7FND:
			spanStart = n.Body
			spanBody = nil
		case store.RevisionManifestEndFND:
			if spanStart == nil {
				return nil, fmt.Errorf("object space: %w: RevisionManifestEndFND without a start", store.ErrUnexpectedFileNode)
			}
			in := store.BuildRevisionInput{
				Nodes:        spanBody,
				StartBody:    spanStart,
				ResolveGroup: groupResolver(source),
				ResolveBlob:  source,
			}
			if _, err := space.AddRevision(in); err != nil {
				return nil, fmt.Errorf("object space: %w", err)
			}
			spanStart = nil
		default:
			if spanStart == nil {
				return nil, fmt.Errorf("object space: %w: %s outside any revision span",
					store.ErrUnexpectedFileNode, n.Header.Kind)
			}
			spanBody = append(spanBody, n)
		}
	}
	return space, nil
}

// groupResolver builds a GroupNodesResolver over source: given an
// ObjectGroupListReferenceFND's Ref, it walks that region's own
// ObjectGroupStartFND … ObjectGroupEndFND file-node list and returns the
// group id plus its body nodes with both markers excluded (§4.D, §4.G).
func groupResolver(source func(store.ChunkRef) (*store.Reader, error)) store.GroupNodesResolver {
	return func(ref store.ChunkRef) (store.ExtendedGUID, []store.FileNode, error) {
		nodes, err := readNodeList(source, ref, objectGroupAllowed)
		if err != nil {
			return store.ExtendedGUID{}, nil, fmt.Errorf("object group: %w", err)
		}
		if len(nodes) == 0 {
			return store.ExtendedGUID{}, nil, fmt.Errorf("object group: %w: empty region", store.ErrUnexpectedFileNode)
		}
		start, ok := nodes[0].Body.(store.ObjectGroupStartFND)
		if !ok {
			return store.ExtendedGUID{}, nil, fmt.Errorf("object group: %w: region does not open with ObjectGroupStartFND",
				store.ErrUnexpectedFileNode)
		}
		endIdx := -1
		for i, n := range nodes {
			if _, ok := n.Body.(store.ObjectGroupEndFND); ok {
				endIdx = i
				break
			}
		}
		if endIdx < 0 {
			return store.ExtendedGUID{}, nil, fmt.Errorf("object group: %w: region never closes", store.ErrUnexpectedFileNode)
		}
		return start.Ogid, nodes[1:endIdx], nil
	}
}
