package onenote

import (
	"context"
	"crypto/crc32"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/onekit/store"
)

// File-data reference tags (§4.M).
const (
	fileDataTagSidecar = "<file>"
	fileDataTagInternal = "<ifndf>"
	fileDataTagInvalid  = "<invfdo>"
)

// ResolvedFileData is the result of resolving a file-data object's
// reference string (§4.M: "the resolver exposes get(fileDataObject) →
// {bytes, filename}").
type ResolvedFileData struct {
	Bytes    []byte
	Filename string
}

// FileDataStore is the internal file-data blob store addressed by a
// section file's FileDataStoreListReferenceFND (§4.M: "a file-data-store
// object inside the same .one file, keyed by GUID"). Every
// FileDataStoreObjectReferenceFND entry in the referenced file-node list
// contributes one GUID → blob location mapping.
type FileDataStore struct {
	blobs map[store.GUID]store.ChunkRef
}

// BuildFileDataStore walks the file-node list at ref (a
// FileDataStoreListReferenceFND's own Ref), collecting every
// FileDataStoreObjectReferenceFND it contains. A Nil ref yields an empty
// store, since not every section file carries internal file data.
func BuildFileDataStore(ref store.ChunkRef, source func(store.ChunkRef) (*store.Reader, error)) (*FileDataStore, error) {
	fds := &FileDataStore{blobs: make(map[store.GUID]store.ChunkRef)}
	if ref.IsNil() {
		return fds, nil
	}
	allowed := store.NewAllowedNodes(store.NodeFileDataStoreObjectReferenceFND)
	it, err := store.NewFileNodeListIterator(source, ref, allowed)
	if err != nil {
		return nil, fmt.Errorf("file data store: %w", err)
	}
	for {
		n, ok, err := it.Next()
		if err != nil {
			return nil, fmt.Errorf("file data store: %w", err)
		}
		if !ok {
			break
		}
		if b, ok := n.Body.(store.FileDataStoreObjectReferenceFND); ok {
			fds.blobs[b.GuidReference] = b.Ref
		}
	}
	return fds, nil
}

// readFileDataBlob reads the small header prefacing a file-data-store
// blob — the object's own identity GUID, its content length, and a CRC-32
// over the content — and returns the validated content bytes (§4.M).
func readFileDataBlob(r *store.Reader) ([]byte, error) {
	guidBytes, err := r.Bytes(16)
	if err != nil {
		return nil, fmt.Errorf("file data blob: header guid: %w", err)
	}
	guid, err := store.ParseGUID(guidBytes)
	if err != nil {
		return nil, err
	}
	length, err := r.U64()
	if err != nil {
		return nil, fmt.Errorf("file data blob: length: %w", err)
	}
	crc, err := r.U32()
	if err != nil {
		return nil, fmt.Errorf("file data blob: crc: %w", err)
	}
	content, err := r.Bytes(int(length))
	if err != nil {
		return nil, fmt.Errorf("file data blob %s: content: %w", guid, err)
	}
	if crc32.ChecksumIEEE(content) != crc {
		return nil, fmt.Errorf("file data blob %s: %w: crc mismatch", guid, store.ErrArgument)
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

// NewFileDataResolver builds a FileDataResolver bound to a section's
// sidecar folder (sectionDir/sectionName_onefiles) and internal file-data
// store (§4.M). sectionDir and sectionName may be empty if the caller has
// no sidecar folder to offer; lookups against <file> references then fail.
func NewFileDataResolver(sectionDir, sectionName string, fds *FileDataStore, source func(store.ChunkRef) (*store.Reader, error)) FileDataResolver {
	return func(ctx context.Context, reference, extension string) ([]byte, error) {
		res, err := resolveFileData(ctx, reference, extension, sectionDir, sectionName, fds, source)
		if err != nil {
			return nil, err
		}
		return res.Bytes, nil
	}
}

// ResolveFileData is the richer form of file-data resolution, returning the
// filename alongside the bytes, as §4.M's external contract describes. It
// takes ctx so a caller embedding the decoder in a server can bound the
// sidecar-file read or internal-store blob fetch.
func ResolveFileData(ctx context.Context, reference, extension, sectionDir, sectionName string, fds *FileDataStore, source func(store.ChunkRef) (*store.Reader, error)) (ResolvedFileData, error) {
	return resolveFileData(ctx, reference, extension, sectionDir, sectionName, fds, source)
}

func resolveFileData(ctx context.Context, reference, extension, sectionDir, sectionName string, fds *FileDataStore, source func(store.ChunkRef) (*store.Reader, error)) (ResolvedFileData, error) {
	if err := ctx.Err(); err != nil {
		return ResolvedFileData{}, err
	}
	switch {
	case strings.HasPrefix(reference, fileDataTagSidecar):
		name := strings.TrimPrefix(reference, fileDataTagSidecar)
		filename := name + extension
		dir := fmt.Sprintf("%s_onefiles", sectionName)
		path := filepath.Join(sectionDir, dir, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			return ResolvedFileData{}, fmt.Errorf("file data %q: %w", path, err)
		}
		return ResolvedFileData{Bytes: data, Filename: filename}, nil

	case strings.HasPrefix(reference, fileDataTagInternal):
		guidStr := strings.TrimPrefix(reference, fileDataTagInternal)
		guid, err := store.GUIDFromCurlyString(guidStr)
		if err != nil {
			return ResolvedFileData{}, fmt.Errorf("file data reference %q: %w", reference, err)
		}
		if fds == nil {
			return ResolvedFileData{}, fmt.Errorf("file data %s: %w: no internal store available", guid, store.ErrObjectNotFound)
		}
		ref, ok := fds.blobs[guid]
		if !ok {
			return ResolvedFileData{}, fmt.Errorf("file data %s: %w", guid, store.ErrObjectNotFound)
		}
		r, err := source(ref)
		if err != nil {
			return ResolvedFileData{}, fmt.Errorf("file data %s: %w", guid, err)
		}
		content, err := readFileDataBlob(r)
		if err != nil {
			return ResolvedFileData{}, err
		}
		return ResolvedFileData{Bytes: content, Filename: guid.String() + extension}, nil

	case strings.HasPrefix(reference, fileDataTagInvalid):
		return ResolvedFileData{}, nil

	default:
		return ResolvedFileData{}, fmt.Errorf("file data reference %q: %w", reference, store.ErrUnrecognizedFileData)
	}
}
