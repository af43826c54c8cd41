package store

import "fmt"

// HeaderSize is the fixed byte length of a OneStore file header (§4.J, §6).
const HeaderSize = 1024

// FileType classifies a OneStore file by its header's guidFileType (§3).
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeSection
	FileTypeTOC2
)

func (t FileType) String() string {
	switch t {
	case FileTypeSection:
		return "Section"
	case FileTypeTOC2:
		return "TOC2"
	default:
		return "Unknown"
	}
}

var (
	sectionFileTypeGUID, _ = GUIDFromCurlyString("{7B5C52E4-D88C-4DA7-AEB1-5378D02996D3}")
	toc2FileTypeGUID, _    = GUIDFromCurlyString("{43FF2FA1-EFD9-4C76-9EE2-10EA5722765F}")
)

// Header is the subset of the 1024-byte fixed header this decoder
// interprets: guidFileType (to classify) and fcrFileNodeListRoot (to find
// the root file-node list). Every other header field is preserved
// verbatim in Raw for callers that need it (§4.J: "other fields are
// preserved verbatim").
type Header struct {
	FileType            FileType
	GuidFileType         GUID
	FcrFileNodeListRoot FileChunkReference64x32
	Raw                 []byte
}

// ReadHeader parses the fixed 1024-byte header from the start of r.
func ReadHeader(r *Reader) (Header, error) {
	raw, err := r.PeekBytes(HeaderSize)
	if err != nil {
		return Header{}, fmt.Errorf("header: %w", err)
	}

	guidFileTypeBytes, err := r.Bytes(16)
	if err != nil {
		return Header{}, err
	}
	guidFileType, err := ParseGUID(guidFileTypeBytes)
	if err != nil {
		return Header{}, err
	}

	// guidFile, guidLegacyFileVersion, guidFileFormat: 3*16 bytes.
	if err := r.Advance(16 * 3); err != nil {
		return Header{}, err
	}
	// four ffv* u32 code-version markers.
	if err := r.Advance(4 * 4); err != nil {
		return Header{}, err
	}
	// fcrLegacyFreeChunkList(8), fcrLegacyTransactionLog(8).
	if err := r.Advance(8 + 8); err != nil {
		return Header{}, err
	}
	// cTransactionsInLog u32, cbLegacyExpectedFileLength u32.
	if err := r.Advance(4 + 4); err != nil {
		return Header{}, err
	}
	// 8-byte placeholder, fcrLegacyFileNodeListRoot(8).
	if err := r.Advance(8 + 8); err != nil {
		return Header{}, err
	}
	// cbLegacyFreeSpaceInFreeChunkList u32, four u8 flags.
	if err := r.Advance(4 + 4); err != nil {
		return Header{}, err
	}
	// guidAncestor(16), crcName u32.
	if err := r.Advance(16 + 4); err != nil {
		return Header{}, err
	}
	// fcrHashedChunkList(12), fcrTransactionLog(12).
	if err := r.Advance(12 + 12); err != nil {
		return Header{}, err
	}

	fcrFileNodeListRoot, err := ReadFileChunkReference64x32(r)
	if err != nil {
		return Header{}, err
	}

	if err := r.Seek(HeaderSize); err != nil {
		return Header{}, fmt.Errorf("header: %w", err)
	}

	fileType := FileTypeUnknown
	switch guidFileType {
	case sectionFileTypeGUID:
		fileType = FileTypeSection
	case toc2FileTypeGUID:
		fileType = FileTypeTOC2
	default:
		return Header{}, fmt.Errorf("header: %w: guidFileType %s", ErrUnrecognizedFileFormat, guidFileType)
	}

	return Header{
		FileType:            fileType,
		GuidFileType:         guidFileType,
		FcrFileNodeListRoot: fcrFileNodeListRoot,
		Raw:                 append([]byte(nil), raw...),
	}, nil
}

// OneStoreFile is the top-level decoded structure (§3, §4.J): the root
// object-space identity, every object space reached from the root file-node
// list, and (for section files) the file-data store list reference.
type OneStoreFile struct {
	Header            Header
	RootObjectSpaceID ExtendedGUID
	ObjectSpaces      map[ExtendedGUID]*ObjectSpace
	FileDataStoreRef  ChunkRef // Nil if absent
}

// rootAllowedNodes restricts the root file-node list to exactly the three
// node kinds §4.J names.
var rootAllowedNodes = NewAllowedNodes(
	NodeObjectSpaceManifestRootFND,
	NodeObjectSpaceManifestListReferenceFND,
	NodeFileDataStoreListReferenceFND,
)

// ObjectSpaceBuilder constructs one ObjectSpace from the file-node list
// addressed by an ObjectSpaceManifestListReferenceFND's Ref; it is supplied
// by the caller (which owns the whole-file byte slab and fragment-walking
// machinery) so this function stays agnostic of file layout.
type ObjectSpaceBuilder func(ref ChunkRef) (*ObjectSpace, error)

// BuildOneStoreFile walks the root file-node list (already iterated by the
// caller into rootNodes, in document order) and assembles the top-level
// structure per §4.J.
func BuildOneStoreFile(header Header, rootNodes []FileNode, buildSpace ObjectSpaceBuilder) (*OneStoreFile, error) {
	f := &OneStoreFile{Header: header, ObjectSpaces: make(map[ExtendedGUID]*ObjectSpace), FileDataStoreRef: NilChunkRef}

	haveRoot := false
	for _, n := range rootNodes {
		if !rootAllowedNodes[n.Header.Kind] {
			return nil, fmt.Errorf("onestorefile: %w: %s not permitted at file root", ErrUnexpectedFileNode, n.Header.Kind)
		}
		switch b := n.Body.(type) {
		case ObjectSpaceManifestRootFND:
			if haveRoot {
				return nil, fmt.Errorf("onestorefile: %w: more than one root OSID declared", ErrUnexpectedFileNode)
			}
			f.RootObjectSpaceID = b.GosidRoot
			haveRoot = true
		case ObjectSpaceManifestListReferenceFND:
			space, err := buildSpace(b.Ref)
			if err != nil {
				return nil, fmt.Errorf("onestorefile: object space %s: %w", b.Gosid, err)
			}
			f.ObjectSpaces[b.Gosid] = space
		case FileDataStoreListReferenceFND:
			f.FileDataStoreRef = b.Ref
		}
	}

	if !haveRoot {
		return nil, fmt.Errorf("onestorefile: %w: no root object space ID declared", ErrUnexpectedFileNode)
	}
	if len(f.ObjectSpaces) == 0 {
		return nil, fmt.Errorf("onestorefile: %w: no object spaces present", ErrUnexpectedFileNode)
	}
	return f, nil
}
