package onenote

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/joshuapare/onekit/pkg/types"
	"github.com/joshuapare/onekit/store"
)

// Node is one realized object in the typed tree: a JCID-tagged record
// carrying its property set's values plus, for child-bearing schemas, the
// recursively built children (§4.K).
type Node struct {
	OID        store.ExtendedGUID
	JCID       store.JCID
	SchemaName string
	IsReadOnly bool

	// Properties indexes the raw decoded properties by their numeric
	// PropertyID, including ones this package has no symbolic name for.
	// Only properties whose schema minVerbosity is within the tree's
	// build verbosity are present (§4.K).
	Properties map[uint32]store.Property

	// Children holds only the child nodes whose own MinVerbosity is
	// within the tree's build verbosity (§4.K).
	Children []*Node

	// MinVerbosity is this node's schema-declared minimum display
	// verbosity: the minimum over its properties' (and, for child-bearing
	// nodes, its designated child-nodes property's) verbosity (§4.K).
	MinVerbosity int

	// ContentHash identifies the node by content for read-only dedup,
	// computed over jcid plus every property whose minVerbosity is within
	// the verbosity this tree was built at (§4.K).
	ContentHash [16]byte

	// TextRuns is populated only for RichTextOENode objects (§4.L).
	TextRuns []TextRun

	// FileData is populated only for file-data objects once resolved
	// (§4.M); nil until resolved.
	FileData []byte
}

// FileDataResolver binds a file-data reference string (from an
// ObjectDeclarationFileData3* declaration) to its bytes (§4.M). It takes
// ctx so a caller embedding the decoder in a server can bound the
// sidecar-file read or internal-store blob fetch.
type FileDataResolver func(ctx context.Context, reference, extension string) ([]byte, error)

// BuildContext carries everything a recursive Build needs: the revision's
// realized objects, a circular-reference guard, the caller's requested
// verbosity, and (optionally) a resolver for file-data objects.
type BuildContext struct {
	Objects   map[store.ExtendedGUID]store.GroupObject
	Verbosity int
	FileData  FileDataResolver

	building map[store.ExtendedGUID]bool
}

// NewBuildContext prepares a context for one tree build.
func NewBuildContext(objects map[store.ExtendedGUID]store.GroupObject, verbosity int, fileData FileDataResolver) *BuildContext {
	return &BuildContext{Objects: objects, Verbosity: verbosity, FileData: fileData, building: make(map[store.ExtendedGUID]bool)}
}

// Build recursively realizes the object at oid into a Node (§4.K).
func (bc *BuildContext) Build(ctx context.Context, oid store.ExtendedGUID) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bc.building[oid] {
		return nil, types.New(types.ErrKindCircularObjectReference, fmt.Sprintf("oid %s", oid), nil)
	}
	obj, ok := bc.Objects[oid]
	if !ok {
		return nil, types.New(types.ErrKindObjectNotFound, fmt.Sprintf("oid %s", oid), nil)
	}
	if obj.IsFileData {
		return bc.buildFileData(ctx, oid, obj)
	}

	bc.building[oid] = true
	defer delete(bc.building, oid)

	allProps := make(map[uint32]store.Property, len(obj.PropertySet.Properties))
	for _, p := range obj.PropertySet.Properties {
		allProps[p.Header.PropertyID] = p
	}

	node := &Node{
		OID:        oid,
		JCID:       obj.JCID,
		SchemaName: jcidName(obj.JCID),
		IsReadOnly: obj.IsReadOnly || readOnlyJCIDs[KnownJCID(obj.JCID)],
	}

	var allChildren []*Node
	if childProp, ok := childNodesProperty[KnownJCID(obj.JCID)]; ok {
		if p, ok := allProps[uint32(childProp)]; ok {
			children, err := bc.buildChildren(ctx, p.ObjectIDs, obj.ResolveOID)
			if err != nil {
				return nil, err
			}
			allChildren = children
		}
	}

	node.MinVerbosity = minVerbosityOf(allProps)
	node.Properties = filterProperties(allProps, bc.Verbosity)
	node.Children = filterChildren(allChildren, bc.Verbosity)
	node.ContentHash = contentHashOf(node.JCID, node.Properties)

	if KnownJCID(obj.JCID) == JCIDRichTextOENode {
		ReconstructTextRuns(node)
		if len(node.TextRuns) == 0 {
			node.MinVerbosity++
		}
	}

	return node, nil
}

// buildChildren resolves each CompactID in ids against resolve (the table
// that was active when the parent object's property set was decoded, per
// the invariant that a CompactID always resolves against its own
// group's/revision's table — see store.GroupObject.ResolveOID) and
// recursively builds the referenced objects.
func (bc *BuildContext) buildChildren(ctx context.Context, ids []store.CompactID, resolve func(store.CompactID) (store.ExtendedGUID, error)) ([]*Node, error) {
	if resolve == nil {
		return nil, fmt.Errorf("typed tree: %w: child property present but no OID resolver set", types.ErrArgument)
	}
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		oid, err := resolve(id)
		if err != nil {
			return nil, err
		}
		n, err := bc.Build(ctx, oid)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// minVerbosityOf is a property set's schema-declared minimum display
// verbosity: the minimum over every decoded property's own minVerbosity,
// including the designated ChildNodes property where present (§4.K).
func minVerbosityOf(properties map[uint32]store.Property) int {
	min := -1
	for id := range properties {
		v := propertyMinVerbosityOf(id)
		if min == -1 || v < min {
			min = v
		}
	}
	if min == -1 {
		return 0
	}
	return min
}

// filterProperties keeps only the properties whose schema-declared
// minVerbosity is within the verbosity this tree is being built at (§4.K,
// §8: "Implementations MUST apply the same verbosity filter to both hash
// inputs and emitted output").
func filterProperties(all map[uint32]store.Property, verbosity int) map[uint32]store.Property {
	out := make(map[uint32]store.Property, len(all))
	for id, p := range all {
		if propertyMinVerbosityOf(id) <= verbosity {
			out[id] = p
		}
	}
	return out
}

// filterChildren drops children whose own schema-declared minVerbosity
// exceeds the requested verbosity, the same filter applied to properties.
func filterChildren(children []*Node, verbosity int) []*Node {
	if children == nil {
		return nil
	}
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		if c.MinVerbosity <= verbosity {
			out = append(out, c)
		}
	}
	return out
}

// contentHashOf feeds jcid and every already-verbosity-filtered property
// (in stable PropertyID order) into an MD5 digest used only as a content
// identity, never for security (§4.K). Filtering before hashing lets two
// revisions that differ only in verbosity-filtered fields share a hash.
func contentHashOf(jcid store.JCID, properties map[uint32]store.Property) [16]byte {
	h := md5.New()
	var jcidBuf [4]byte
	binary.LittleEndian.PutUint32(jcidBuf[:], uint32(jcid))
	h.Write(jcidBuf[:])

	ids := make([]int, 0, len(properties))
	for id := range properties {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		p := properties[uint32(id)]
		var idBuf [4]byte
		binary.LittleEndian.PutUint32(idBuf[:], uint32(id))
		h.Write(idBuf[:])
		h.Write(p.Raw)
		if p.Bool {
			h.Write([]byte{1})
		}
	}
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (bc *BuildContext) buildFileData(ctx context.Context, oid store.ExtendedGUID, obj store.GroupObject) (*Node, error) {
	node := &Node{OID: oid, JCID: obj.JCID, SchemaName: jcidName(obj.JCID)}
	if bc.FileData != nil {
		data, err := bc.FileData(ctx, obj.FileDataReference, obj.FileDataExtension)
		if err != nil {
			return nil, fmt.Errorf("file data object %s: %w", oid, err)
		}
		node.FileData = data
	}
	return node, nil
}
