package store

// CompactID is a packed 32-bit local reference: the low 8 bits are a small
// disambiguator `n`, the high 24 bits index into the enclosing global ID
// table's GUID list. It is resolved to an ExtendedGUID via GlobalIDTable.Lookup.
type CompactID uint32

// N returns the low 8-bit disambiguator.
func (c CompactID) N() uint8 {
	return uint8(c & 0xFF)
}

// GUIDIndex returns the high 24-bit index into a global ID table's GUID list.
func (c CompactID) GUIDIndex() uint32 {
	return uint32(c >> 8)
}

// IsZero reports whether both fields are zero.
func (c CompactID) IsZero() bool {
	return c == 0
}

// NewCompactID packs an index and n into a CompactID, the inverse of
// GUIDIndex/N. Used by fixture builders and the global-ID-table writer path.
func NewCompactID(guidIndex uint32, n uint8) CompactID {
	return CompactID(guidIndex<<8 | uint32(n))
}

// ReadCompactID reads one little-endian u32 from r as a CompactID.
func (r *Reader) ReadCompactID() (CompactID, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return CompactID(v), nil
}
