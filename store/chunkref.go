package store

import "fmt"

// ChunkRef is a (stp, cb) pair: a file offset and a byte count. Both Nil and
// Zero are well-known sentinel forms (§3):
//   - Nil: stp == 0xFFFF_FFFF_FFFF_FFFF, cb == 0 — "no reference".
//   - Zero: stp == 0, cb == 0 — a reference to the start of the file with no
//     length, used in a handful of contexts as an explicit not-present marker
//     distinct from Nil.
type ChunkRef struct {
	Stp uint64
	Cb  uint64
}

// NilStp is the 64-bit all-ones sentinel stp value.
const NilStp uint64 = 0xFFFFFFFFFFFFFFFF

// NilChunkRef is the canonical Nil reference.
var NilChunkRef = ChunkRef{Stp: NilStp, Cb: 0}

// IsNil reports whether r is the Nil reference, by value rather than by
// exact stp width — callers should always go through ReadChunkRef so smaller
// formats are normalized, but IsNil is also correct against a reference
// constructed directly with the full-width sentinel.
func (r ChunkRef) IsNil() bool {
	return r.Stp == NilStp && r.Cb == 0
}

// IsZero reports whether r is the Zero reference (stp == 0, cb == 0).
func (r ChunkRef) IsZero() bool {
	return r.Stp == 0 && r.Cb == 0
}

func (r ChunkRef) String() string {
	if r.IsNil() {
		return "ChunkRef(nil)"
	}
	return fmt.Sprintf("ChunkRef{stp=0x%X, cb=%d}", r.Stp, r.Cb)
}

// stpFormat / cbFormat codes from the FileNode header (§4.C).
const (
	formatUncompressed8  = 0 // 8-byte field, no compression
	formatUncompressed4  = 1 // 4-byte field
	formatCompressed8    = 2 // 8-byte field, scaled (x8)
	formatCompressed4    = 3 // 4-byte field, scaled (x8)
)

// ReadChunkRef reads a chunk reference from r according to the 4x4
// stpFormat/cbFormat size matrix (§4.B), normalizing any smaller-width Nil
// encoding to the canonical 64-bit Nil (§8 property 3).
func ReadChunkRef(r *Reader, stpFormat, cbFormat uint8) (ChunkRef, error) {
	stp, stpIsNilMarker, err := readStp(r, stpFormat)
	if err != nil {
		return ChunkRef{}, err
	}
	cb, err := readCb(r, cbFormat)
	if err != nil {
		return ChunkRef{}, err
	}
	if (stpIsNilMarker || isAllOnes(stp, stpFormat)) && cb == 0 {
		return NilChunkRef, nil
	}
	return ChunkRef{Stp: stp, Cb: cb}, nil
}

func isAllOnes(v uint64, format uint8) bool {
	switch format {
	case formatUncompressed8, formatCompressed8:
		return v == NilStp
	case formatUncompressed4, formatCompressed4:
		return v == 0xFFFFFFFF
	default:
		return false
	}
}

func readStp(r *Reader, format uint8) (uint64, bool, error) {
	switch format {
	case formatUncompressed8:
		v, err := r.U64()
		return v, false, err
	case formatUncompressed4:
		v, err := r.U32()
		return uint64(v), false, err
	case formatCompressed8:
		v, err := r.U32()
		if err != nil {
			return 0, false, err
		}
		if v == 0xFFFFFFFF {
			return NilStp, true, nil
		}
		return uint64(v) * 8, false, nil
	case formatCompressed4:
		v, err := r.U16()
		if err != nil {
			return 0, false, err
		}
		if v == 0xFFFF {
			return NilStp, true, nil
		}
		return uint64(v) * 8, false, nil
	default:
		return 0, false, fmt.Errorf("chunkref: %w: stpFormat %d", ErrArgument, format)
	}
}

func readCb(r *Reader, format uint8) (uint64, error) {
	switch format {
	case formatUncompressed8:
		return r.U64()
	case formatUncompressed4:
		v, err := r.U32()
		return uint64(v), err
	case formatCompressed8:
		v, err := r.U32()
		return uint64(v) * 8, err
	case formatCompressed4:
		v, err := r.U16()
		return uint64(v) * 8, err
	default:
		return 0, fmt.Errorf("chunkref: %w: cbFormat %d", ErrArgument, format)
	}
}

// FileChunkReference32 is a fixed 8-byte (stp:4, cb:4) reference.
type FileChunkReference32 struct {
	Stp uint32
	Cb  uint32
}

// ReadFileChunkReference32 reads the 8-byte fixed-width form.
func ReadFileChunkReference32(r *Reader) (FileChunkReference32, error) {
	stp, err := r.U32()
	if err != nil {
		return FileChunkReference32{}, err
	}
	cb, err := r.U32()
	if err != nil {
		return FileChunkReference32{}, err
	}
	return FileChunkReference32{Stp: stp, Cb: cb}, nil
}

// FileChunkReference64x32 is a fixed 12-byte (stp:8, cb:4) reference.
type FileChunkReference64x32 struct {
	Stp uint64
	Cb  uint32
}

// ReadFileChunkReference64x32 reads the 12-byte fixed-width form.
func ReadFileChunkReference64x32(r *Reader) (FileChunkReference64x32, error) {
	stp, err := r.U64()
	if err != nil {
		return FileChunkReference64x32{}, err
	}
	cb, err := r.U32()
	if err != nil {
		return FileChunkReference64x32{}, err
	}
	return FileChunkReference64x32{Stp: stp, Cb: cb}, nil
}

// FileChunkReference64 is a fixed 16-byte (stp:8, cb:8) reference.
type FileChunkReference64 struct {
	Stp uint64
	Cb  uint64
}

// ReadFileChunkReference64 reads the 16-byte fixed-width form.
func ReadFileChunkReference64(r *Reader) (FileChunkReference64, error) {
	stp, err := r.U64()
	if err != nil {
		return FileChunkReference64{}, err
	}
	cb, err := r.U64()
	if err != nil {
		return FileChunkReference64{}, err
	}
	return FileChunkReference64{Stp: stp, Cb: cb}, nil
}
