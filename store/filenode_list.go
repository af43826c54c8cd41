package store

import (
	"fmt"
)

// fragmentMagic is the 8-byte signature a FileNodeListFragment header opens
// with (§4.D / §3).
const fragmentMagic uint64 = 0xA4567AB1F5F7F4C4

// fragmentFooter is the 8-byte sentinel every fragment ends with, trailing
// its nextFragment chunk reference.
const fragmentFooter uint64 = 0x8BC215C38233BA4B

// fragmentTrailerSize is the byte length of {nextFragment ChunkRef, footer
// u64} at the end of every fragment, using the 8-byte uncompressed
// ChunkRef encoding fragments always use for their own linkage (§4.D).
const fragmentTrailerSize = 8 + 8 + 8

// FileNodeListIterator walks every file node across all fragments of a
// file-node list, following each fragment's nextFragment chunk reference
// until it reaches Nil (§4.D, §8 property 1).
type FileNodeListIterator struct {
	source  func(ref ChunkRef) (*Reader, error)
	current *Reader
	lastRef ChunkRef // the fragment ref `current` was loaded from
	allowed AllowedNodes
	done    bool
	err     error
}

// NewFileNodeListIterator builds an iterator starting at the fragment
// addressed by start. source resolves a ChunkRef to a Reader over that
// fragment's raw bytes (typically backed by the whole-file slab); it is
// supplied by the caller (component I/J) so this package never assumes a
// particular file layout.
func NewFileNodeListIterator(source func(ref ChunkRef) (*Reader, error), start ChunkRef, allowed AllowedNodes) (*FileNodeListIterator, error) {
	it := &FileNodeListIterator{source: source, allowed: allowed}
	if start.IsNil() {
		it.done = true
		return it, nil
	}
	frag, err := it.loadFragment(start)
	if err != nil {
		return nil, err
	}
	it.current = frag
	it.lastRef = start
	return it, nil
}

// loadFragment resolves ref, validates its magic, and returns a Reader over
// just the node bytes (magic and trailer stripped).
func (it *FileNodeListIterator) loadFragment(ref ChunkRef) (*Reader, error) {
	raw, err := it.source(ref)
	if err != nil {
		return nil, fmt.Errorf("filenode list: loading fragment at %s: %w", ref, err)
	}
	magic, err := raw.U64()
	if err != nil {
		return nil, fmt.Errorf("filenode list: fragment magic: %w", err)
	}
	if magic != fragmentMagic {
		return nil, fmt.Errorf("filenode list: %w: fragment magic 0x%X", ErrUnrecognizedFileFormat, magic)
	}

	body, err := raw.Truncate(fragmentTrailerSize)
	if err != nil {
		return nil, fmt.Errorf("filenode list: fragment too small for trailer: %w", err)
	}
	return body, nil
}

// nextFragmentRef re-resolves the fragment at ref and reads its
// {nextFragment, footer} trailer, returning the next fragment's chunk
// reference.
func (it *FileNodeListIterator) nextFragmentRef(ref ChunkRef) (ChunkRef, error) {
	raw, err := it.source(ref)
	if err != nil {
		return ChunkRef{}, err
	}
	tail, err := raw.TailSub(fragmentTrailerSize)
	if err != nil {
		return ChunkRef{}, fmt.Errorf("filenode list: fragment trailer: %w", err)
	}
	nextRef, err := ReadChunkRef(tail, formatUncompressed8, formatUncompressed8)
	if err != nil {
		return ChunkRef{}, err
	}
	footer, err := tail.U64()
	if err != nil {
		return ChunkRef{}, err
	}
	if footer != fragmentFooter {
		return ChunkRef{}, fmt.Errorf("filenode list: %w: fragment footer 0x%X", ErrUnrecognizedFileFormat, footer)
	}
	return nextRef, nil
}

// Next decodes and returns the next node in the list, transparently
// crossing fragment boundaries and stopping at a ChunkTerminatorFND or when
// fewer than 4 bytes remain in the final fragment (§4.D). It returns
// (FileNode{}, false, nil) once the list is exhausted.
func (it *FileNodeListIterator) Next() (FileNode, bool, error) {
	if it.done || it.err != nil {
		return FileNode{}, false, it.err
	}

	for {
		if it.current.Remaining() < 4 {
			if err := it.advanceFragment(); err != nil {
				it.err = err
				return FileNode{}, false, err
			}
			if it.done {
				return FileNode{}, false, nil
			}
			continue
		}

		node, err := DecodeFileNode(it.current, it.allowed)
		if err != nil {
			it.err = err
			return FileNode{}, false, err
		}
		if !node.Header.Valid {
			if err := it.advanceFragment(); err != nil {
				it.err = err
				return FileNode{}, false, err
			}
			if it.done {
				return FileNode{}, false, nil
			}
			continue
		}
		if node.Header.Kind == NodeChunkTerminatorFND {
			it.done = true
			return FileNode{}, false, nil
		}
		return node, true, nil
	}
}

// advanceFragment follows the current fragment's nextFragment link,
// loading the following fragment or marking the iterator done at Nil.
func (it *FileNodeListIterator) advanceFragment() error {
	// The current fragment reader has already consumed its node bytes; we
	// need the original (untruncated) reader's trailer, which the source
	// callback can re-resolve because source is addressed by ChunkRef, not
	// by reader state. Callers must therefore make source idempotent for a
	// given ref, which file-backed implementations naturally are.
	nextRef, err := it.lastFragmentNext()
	if err != nil {
		return err
	}
	if nextRef.IsNil() {
		it.done = true
		return nil
	}
	frag, err := it.loadFragment(nextRef)
	if err != nil {
		return err
	}
	it.current = frag
	it.lastRef = nextRef
	return nil
}

func (it *FileNodeListIterator) lastFragmentNext() (ChunkRef, error) {
	return it.nextFragmentRef(it.lastRef)
}
