package onenote

// PropertyID names the subset of the reference PropertyID enumeration this
// decoder gives symbolic meaning to: the fields the text-run reconstructor,
// file-data resolver and child-node walker need by name (§4.K-M). Every
// other property stays addressable only by its raw numeric ID through
// store.Property.Header.PropertyID.
type PropertyID uint32

const (
	PropertyContentChildNodes   PropertyID = 0x24001C1F
	PropertyElementChildNodes   PropertyID = 0x24001C20
	PropertyRichEditTextUnicode PropertyID = 0x1C001C22
	PropertyPictureContainer    PropertyID = 0x20001C3F
	PropertyRichEditTextLangID  PropertyID = 0x10001CFE
	PropertyEmbeddedFileContainer PropertyID = 0x20001D9B
	PropertyEmbeddedFileName    PropertyID = 0x1C001D9C
	PropertyTextRunIndex        PropertyID = 0x1C001E12
	PropertyTextRunFormatting   PropertyID = 0x24001E13
	PropertyTextRunDataObject   PropertyID = 0x24003458
	PropertyTextRunData         PropertyID = 0x40003499
	PropertyTextExtendedAscii   PropertyID = 0x1C003498

	PropertyNotebookManagementEntityGuid PropertyID = 0x1C001C30
	PropertyTopologyCreationTimeStamp    PropertyID = 0x18001C65
	PropertyCachedTitleString            PropertyID = 0x1C001CF3
	PropertyChildGraphSpaceElementNodes  PropertyID = 0x2C001D63
	PropertyAuthor                       PropertyID = 0x1C001D75
	PropertyLastModifiedTimeStamp        PropertyID = 0x18001D77
)

var propertyIDNames = map[PropertyID]string{
	PropertyContentChildNodes:     "ContentChildNodes",
	PropertyElementChildNodes:     "ElementChildNodes",
	PropertyRichEditTextUnicode:   "RichEditTextUnicode",
	PropertyPictureContainer:      "PictureContainer",
	PropertyRichEditTextLangID:    "RichEditTextLangID",
	PropertyEmbeddedFileContainer: "EmbeddedFileContainer",
	PropertyEmbeddedFileName:      "EmbeddedFileName",
	PropertyTextRunIndex:          "TextRunIndex",
	PropertyTextRunFormatting:     "TextRunFormatting",
	PropertyTextRunDataObject:     "TextRunDataObject",
	PropertyTextRunData:           "TextRunData",
	PropertyTextExtendedAscii:     "TextExtendedAscii",

	PropertyNotebookManagementEntityGuid: "NotebookManagementEntityGuid",
	PropertyTopologyCreationTimeStamp:    "TopologyCreationTimeStamp",
	PropertyCachedTitleString:            "CachedTitleString",
	PropertyChildGraphSpaceElementNodes:  "ChildGraphSpaceElementNodes",
	PropertyAuthor:                       "Author",
	PropertyLastModifiedTimeStamp:        "LastModifiedTimeStamp",
}

func (p PropertyID) String() string {
	if name, ok := propertyIDNames[p]; ok {
		return name
	}
	return "Unknown"
}

// propertyMinVerbosity gives a schema-declared minimum display verbosity
// to properties that carry bookkeeping or cache state rather than page
// content (§4.K: "each property has a schema-declared minimum verbosity
// level"). Anything absent from this table defaults to 0 (always shown):
// the reference schema shows the overwhelming majority of properties at
// every verbosity, and only caches/internal linkage are held back.
var propertyMinVerbosity = map[PropertyID]int{
	PropertyCachedTitleString:            1,
	PropertyNotebookManagementEntityGuid: 1,
	PropertyTopologyCreationTimeStamp:    1,
	PropertyChildGraphSpaceElementNodes:  1,
	PropertyRichEditTextLangID:           2,
	PropertyTextRunDataObject:            1,
}

// propertyMinVerbosityOf looks up id's schema-declared minimum verbosity,
// defaulting to 0 for properties this package has no symbolic name for.
func propertyMinVerbosityOf(id uint32) int {
	if v, ok := propertyMinVerbosity[PropertyID(id)]; ok {
		return v
	}
	return 0
}

// defaultLangID is RichEditTextLangID's documented default (§4.L).
const defaultLangID = 1033
