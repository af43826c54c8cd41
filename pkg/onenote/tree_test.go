package onenote

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/onekit/pkg/types"
	"github.com/joshuapare/onekit/store"
)

func extGUID(index uint32, n uint32) store.ExtendedGUID {
	g := store.NilGUID
	g[0] = byte(index)
	g[1] = byte(index >> 8)
	return store.ExtendedGUID{GUID: g, N: n}
}

func TestBuildContext_Build_LeafNode(t *testing.T) {
	root := extGUID(1, 0)
	objects := map[store.ExtendedGUID]store.GroupObject{
		root: {
			JCID: store.JCID(JCIDTitleNode),
			PropertySet: store.PropertySet{
				Properties: []store.Property{
					{Header: store.PropertyHeader{PropertyID: 99}, Raw: []byte("hello")},
				},
			},
		},
	}
	ctx := NewBuildContext(objects, 0, nil)
	node, err := ctx.Build(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "TitleNode", node.SchemaName)
	assert.Equal(t, []byte("hello"), node.Properties[99].Raw)
	assert.Nil(t, node.Children)
	assert.Equal(t, 0, node.MinVerbosity)
}

func TestBuildContext_Build_Children(t *testing.T) {
	childOID := extGUID(2, 0)
	parentOID := extGUID(1, 0)
	childCID := store.NewCompactID(0, 0)

	resolve := func(id store.CompactID) (store.ExtendedGUID, error) {
		if id == childCID {
			return childOID, nil
		}
		return store.ExtendedGUID{}, errors.New("unknown coid")
	}

	objects := map[store.ExtendedGUID]store.GroupObject{
		parentOID: {
			JCID: store.JCID(JCIDSectionNode),
			PropertySet: store.PropertySet{
				Properties: []store.Property{
					{
						Header:    store.PropertyHeader{PropertyID: uint32(PropertyElementChildNodes)},
						ObjectIDs: []store.CompactID{childCID},
					},
				},
			},
			ResolveOID: resolve,
		},
		childOID: {
			JCID: store.JCID(JCIDPageNode),
			PropertySet: store.PropertySet{
				Properties: []store.Property{
					// CachedTitleString carries a non-zero schema minVerbosity
					// (§4.K), so build at verbosity 1 to keep the child visible.
					{Header: store.PropertyHeader{PropertyID: uint32(PropertyCachedTitleString)}},
				},
			},
		},
	}

	ctx := NewBuildContext(objects, 1, nil)
	node, err := ctx.Build(context.Background(), parentOID)
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	assert.Equal(t, "PageNode", node.Children[0].SchemaName)
	assert.Equal(t, 1, node.Children[0].MinVerbosity)
	// ElementChildNodes itself defaults to verbosity 0, so the parent's own
	// minVerbosity does not inherit the child's.
	assert.Equal(t, 0, node.MinVerbosity)
}

func TestBuildContext_Build_VerbosityFiltersChildrenAndProperties(t *testing.T) {
	childOID := extGUID(2, 0)
	parentOID := extGUID(1, 0)
	childCID := store.NewCompactID(0, 0)

	resolve := func(store.CompactID) (store.ExtendedGUID, error) { return childOID, nil }

	objects := map[store.ExtendedGUID]store.GroupObject{
		parentOID: {
			JCID: store.JCID(JCIDSectionNode),
			PropertySet: store.PropertySet{
				Properties: []store.Property{
					{
						Header:    store.PropertyHeader{PropertyID: uint32(PropertyElementChildNodes)},
						ObjectIDs: []store.CompactID{childCID},
					},
					{Header: store.PropertyHeader{PropertyID: uint32(PropertyCachedTitleString)}, Raw: []byte("cached")},
				},
			},
			ResolveOID: resolve,
		},
		childOID: {
			JCID: store.JCID(JCIDPageNode),
			PropertySet: store.PropertySet{
				Properties: []store.Property{
					{Header: store.PropertyHeader{PropertyID: uint32(PropertyCachedTitleString)}},
				},
			},
		},
	}

	ctx := NewBuildContext(objects, 0, nil)
	node, err := ctx.Build(context.Background(), parentOID)
	require.NoError(t, err)
	assert.Empty(t, node.Children, "child at verbosity 1 must be hidden at build verbosity 0")
	_, hasCached := node.Properties[uint32(PropertyCachedTitleString)]
	assert.False(t, hasCached, "verbosity-1 property must be hidden at build verbosity 0")
	_, hasChildNodes := node.Properties[uint32(PropertyElementChildNodes)]
	assert.True(t, hasChildNodes, "verbosity-0 property must remain visible")
}

func TestBuildContext_Build_CircularReference(t *testing.T) {
	oid := extGUID(1, 0)
	cid := store.NewCompactID(0, 0)
	resolve := func(store.CompactID) (store.ExtendedGUID, error) { return oid, nil }

	objects := map[store.ExtendedGUID]store.GroupObject{
		oid: {
			JCID: store.JCID(JCIDSectionNode),
			PropertySet: store.PropertySet{
				Properties: []store.Property{
					{
						Header:    store.PropertyHeader{PropertyID: uint32(PropertyElementChildNodes)},
						ObjectIDs: []store.CompactID{cid},
					},
				},
			},
			ResolveOID: resolve,
		},
	}

	ctx := NewBuildContext(objects, 0, nil)
	_, err := ctx.Build(context.Background(), oid)
	require.Error(t, err)
	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, types.ErrKindCircularObjectReference, typed.Kind)
}

func TestBuildContext_Build_ObjectNotFound(t *testing.T) {
	ctx := NewBuildContext(nil, 0, nil)
	_, err := ctx.Build(context.Background(), extGUID(9, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrObjectNotFound))
}

func TestBuildContext_Build_ParagraphStyleAlwaysReadOnly(t *testing.T) {
	oid := extGUID(1, 0)
	objects := map[store.ExtendedGUID]store.GroupObject{
		oid: {JCID: store.JCID(JCIDParagraphStyleObject), IsReadOnly: false},
	}
	ctx := NewBuildContext(objects, 0, nil)
	node, err := ctx.Build(context.Background(), oid)
	require.NoError(t, err)
	assert.True(t, node.IsReadOnly)
}

func TestBuildContext_Build_FileDataObject(t *testing.T) {
	oid := extGUID(1, 0)
	objects := map[store.ExtendedGUID]store.GroupObject{
		oid: {
			JCID:              store.JCID(JCIDEmbeddedFileNode),
			IsFileData:        true,
			FileDataReference: "<file>myimage",
			FileDataExtension: ".png",
		},
	}
	resolver := func(ctx context.Context, reference, extension string) ([]byte, error) {
		assert.Equal(t, "<file>myimage", reference)
		assert.Equal(t, ".png", extension)
		return []byte{1, 2, 3}, nil
	}
	ctx := NewBuildContext(objects, 0, resolver)
	node, err := ctx.Build(context.Background(), oid)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, node.FileData)
}

func TestBuildContext_Build_RichTextNoRunsBumpsVerbosity(t *testing.T) {
	oid := extGUID(1, 0)
	objects := map[store.ExtendedGUID]store.GroupObject{
		oid: {JCID: store.JCID(JCIDRichTextOENode)},
	}
	ctx := NewBuildContext(objects, 0, nil)
	node, err := ctx.Build(context.Background(), oid)
	require.NoError(t, err)
	assert.Empty(t, node.TextRuns)
	assert.Equal(t, 1, node.MinVerbosity)
}

func TestContentHashOf_StableAcrossPropertyOrder(t *testing.T) {
	jcid := store.JCID(0x42)
	p1 := map[uint32]store.Property{
		1: {Header: store.PropertyHeader{PropertyID: 1}, Raw: []byte("a")},
		2: {Header: store.PropertyHeader{PropertyID: 2}, Raw: []byte("b")},
	}
	p2 := map[uint32]store.Property{
		2: {Header: store.PropertyHeader{PropertyID: 2}, Raw: []byte("b")},
		1: {Header: store.PropertyHeader{PropertyID: 1}, Raw: []byte("a")},
	}
	assert.Equal(t, contentHashOf(jcid, p1), contentHashOf(jcid, p2))
}
