// Package onenote is the public facade over package store: it builds a
// typed object tree, reconstructs rich-text runs, resolves file-data
// references, and collapses version history into a navigable Document
// (§4.K-N).
package onenote

import "github.com/joshuapare/onekit/store"

// KnownJCID names the schema identities this decoder gives special
// treatment (§4.K), ported from the reference PropertySetJCID enumeration.
// The numeric values carry the same IsBinary/IsPropertySet/IsGraphNode/
// IsFileData/IsReadOnly trait bits store.JCID exposes; this table only adds
// symbolic names and the handful of behaviors §4.K-M describe.
type KnownJCID uint32

const (
	JCIDSectionNode             KnownJCID = 0x00060007
	JCIDPageSeriesNode          KnownJCID = 0x00060008
	JCIDPageNode                KnownJCID = 0x0006000B
	JCIDOutlineNode             KnownJCID = 0x0006000C
	JCIDOutlineElementNode      KnownJCID = 0x0006000D
	JCIDRichTextOENode          KnownJCID = 0x0006000E
	JCIDImageNode               KnownJCID = 0x00060011
	JCIDNumberListNode          KnownJCID = 0x00060012
	JCIDOutlineGroup            KnownJCID = 0x00060019
	JCIDTableNode               KnownJCID = 0x00060022
	JCIDTableRowNode            KnownJCID = 0x00060023
	JCIDTableCellNode           KnownJCID = 0x00060024
	JCIDTitleNode               KnownJCID = 0x0006002C
	JCIDPageMetaData            KnownJCID = 0x00020030
	JCIDSectionMetaData         KnownJCID = 0x00020031
	JCIDEmbeddedFileNode        KnownJCID = 0x00060035
	JCIDEmbeddedFileContainer   KnownJCID = 0x00080036
	JCIDPageManifestNode        KnownJCID = 0x00060037
	JCIDConflictPageMetaData    KnownJCID = 0x00020038
	JCIDPictureContainer14      KnownJCID = 0x00080039
	JCIDVersionHistoryContent   KnownJCID = 0x0006003C
	JCIDVersionProxy            KnownJCID = 0x0006003D
	JCIDRevisionMetaData        KnownJCID = 0x00020044
	JCIDVersionHistoryMetaData  KnownJCID = 0x00020046
	JCIDParagraphStyleObject    KnownJCID = 0x0012004D
)

var jcidNames = map[KnownJCID]string{
	JCIDSectionNode:            "SectionNode",
	JCIDPageSeriesNode:         "PageSeriesNode",
	JCIDPageNode:               "PageNode",
	JCIDOutlineNode:            "OutlineNode",
	JCIDOutlineElementNode:     "OutlineElementNode",
	JCIDRichTextOENode:         "RichTextOENode",
	JCIDImageNode:              "ImageNode",
	JCIDNumberListNode:         "NumberListNode",
	JCIDOutlineGroup:           "OutlineGroup",
	JCIDTableNode:              "TableNode",
	JCIDTableRowNode:           "TableRowNode",
	JCIDTableCellNode:          "TableCellNode",
	JCIDTitleNode:              "TitleNode",
	JCIDPageMetaData:           "PageMetaData",
	JCIDSectionMetaData:        "SectionMetaData",
	JCIDEmbeddedFileNode:       "EmbeddedFileNode",
	JCIDEmbeddedFileContainer:  "EmbeddedFileContainer",
	JCIDPageManifestNode:       "PageManifestNode",
	JCIDConflictPageMetaData:   "ConflictPageMetaData",
	JCIDPictureContainer14:     "PictureContainer14",
	JCIDVersionHistoryContent:  "VersionHistoryContent",
	JCIDVersionProxy:           "VersionProxy",
	JCIDRevisionMetaData:       "RevisionMetaData",
	JCIDVersionHistoryMetaData: "VersionHistoryMetaData",
	JCIDParagraphStyleObject:   "ParagraphStyleObject",
}

// Name returns the symbolic schema name for a JCID's index bits, or
// "Unknown" for anything not in the table (§4.K: "Unknown JCIDs produce a
// generic carrier").
func jcidName(j store.JCID) string {
	if name, ok := jcidNames[KnownJCID(j)]; ok {
		return name
	}
	return "Unknown"
}

// childNodesProperty designates, for the JCIDs §4.K names as child-bearing,
// which property carries the node's children (ElementChildNodes or
// ContentChildNodes) — used to propagate minVerbosity from children to
// parent.
var childNodesProperty = map[KnownJCID]PropertyID{
	JCIDSectionNode:        PropertyElementChildNodes,
	JCIDPageSeriesNode:     PropertyElementChildNodes,
	JCIDPageNode:           PropertyElementChildNodes,
	JCIDOutlineNode:        PropertyElementChildNodes,
	JCIDOutlineElementNode: PropertyContentChildNodes,
	JCIDPageManifestNode:   PropertyContentChildNodes,
}

// readOnlyJCIDs marks JCIDs whose identity is by content hash regardless of
// the declaring node's own read-only bit (§4.K: "ParagraphStyle: marked
// read-only").
var readOnlyJCIDs = map[KnownJCID]bool{
	JCIDParagraphStyleObject: true,
}
