package store

// JCID bit flags, per §4.B / §3: a 32-bit tag whose low 16 bits give the
// schema index and whose high bits carry trait flags.
const (
	JCIDFlagIsBinary      uint32 = 0x10000
	JCIDFlagIsPropertySet uint32 = 0x20000
	JCIDFlagIsGraphNode   uint32 = 0x40000
	JCIDFlagIsFileData    uint32 = 0x80000
	JCIDFlagIsReadOnly    uint32 = 0x100000
)

// JCID is the 32-bit typed tag identifying a property-set schema and its
// traits. The low 16 bits are the schema index; the file-type namespace
// (notebook/section vs. TOC2) that the index is interpreted against is a
// property of which PropertySetFactory is in use (see pkg/onenote), not of
// the JCID value itself.
type JCID uint32

// Index returns the 16-bit schema index.
func (j JCID) Index() uint16 {
	return uint16(j)
}

// IsBinary reports the IsBinary trait bit.
func (j JCID) IsBinary() bool { return uint32(j)&JCIDFlagIsBinary != 0 }

// IsPropertySet reports the IsPropertySet trait bit.
func (j JCID) IsPropertySet() bool { return uint32(j)&JCIDFlagIsPropertySet != 0 }

// IsGraphNode reports the IsGraphNode trait bit.
func (j JCID) IsGraphNode() bool { return uint32(j)&JCIDFlagIsGraphNode != 0 }

// IsFileData reports the IsFileData trait bit.
func (j JCID) IsFileData() bool { return uint32(j)&JCIDFlagIsFileData != 0 }

// IsReadOnly reports the IsReadOnly trait bit.
func (j JCID) IsReadOnly() bool { return uint32(j)&JCIDFlagIsReadOnly != 0 }

// ReadJCID reads one little-endian u32 from r as a JCID.
func (r *Reader) ReadJCID() (JCID, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return JCID(v), nil
}
