package store

import "fmt"

// PropertyDataType classifies a property header's encoded value shape
// (§4.F).
type PropertyDataType uint8

const (
	PropertyNoData              PropertyDataType = 0x01
	PropertyBool                PropertyDataType = 0x02
	PropertyInline1Byte         PropertyDataType = 0x03
	PropertyInline2Bytes        PropertyDataType = 0x04
	PropertyInline4Bytes        PropertyDataType = 0x05
	PropertyInline8Bytes        PropertyDataType = 0x06
	PropertyPrefixedBytes       PropertyDataType = 0x07
	PropertyObjectID            PropertyDataType = 0x08
	PropertyArrayOfObjectIDs    PropertyDataType = 0x09
	PropertyObjectSpaceID       PropertyDataType = 0x0A
	PropertyArrayOfObjectSpaceIDs PropertyDataType = 0x0B
	PropertyContextID           PropertyDataType = 0x0C
	PropertyArrayOfContextIDs   PropertyDataType = 0x0D
	PropertyArrayOfPropertyValues PropertyDataType = 0x10
	PropertyNestedPropertySet   PropertyDataType = 0x11
)

// PropertyHeader is the unpacked 32-bit property tag: {propertyId:26,
// dataType:5, valueBit:1}.
type PropertyHeader struct {
	PropertyID uint32
	DataType   PropertyDataType
	ValueBit   bool
}

func decodePropertyHeader(raw uint32) PropertyHeader {
	return PropertyHeader{
		PropertyID: raw & 0x3FFFFFF,
		DataType:   PropertyDataType((raw >> 26) & 0x1F),
		ValueBit:   raw&0x80000000 != 0,
	}
}

func encodePropertyHeader(h PropertyHeader) uint32 {
	var v uint32
	v |= h.PropertyID & 0x3FFFFFF
	v |= (uint32(h.DataType) & 0x1F) << 26
	if h.ValueBit {
		v |= 0x80000000
	}
	return v
}

// Property is one decoded property: its header plus its interpreted value.
// Exactly one of the typed fields is meaningful, selected by Header.DataType;
// Raw always holds the inline/length-prefixed bytes for dataTypes 0x03-0x07
// so callers needing the untyped form (e.g. a JCID-specific record builder)
// don't have to re-switch on DataType themselves.
type Property struct {
	Header     PropertyHeader
	Bool       bool
	Raw        []byte
	ObjectIDs  []CompactID
	SpaceIDs   []CompactID
	ContextIDs []CompactID
	Nested     []PropertySet
}

// idStreamHeader is the {count:24, extendedStreamsPresent:1,
// osidStreamNotPresent:1, reserved:6} word prefacing each ID stream.
type idStreamHeader struct {
	Count                 uint32
	ExtendedStreamsPresent bool
	OsidStreamNotPresent   bool
}

func decodeIDStreamHeader(raw uint32) idStreamHeader {
	return idStreamHeader{
		Count:                  raw & 0xFFFFFF,
		ExtendedStreamsPresent: raw&(1<<24) != 0,
		OsidStreamNotPresent:   raw&(1<<25) != 0,
	}
}

func readIDStream(r *Reader, count uint32) ([]CompactID, error) {
	ids := make([]CompactID, count)
	for i := range ids {
		id, err := r.ReadCompactID()
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// PropertySet is a decoded property set: its properties plus the three ID
// streams properties of dataType 0x08-0x0D drew from (§4.F, §3).
type PropertySet struct {
	Properties []Property
	OIDs       []CompactID
	OSIDs      []CompactID
	ContextIDs []CompactID

	// Raw holds the verbatim bytes this set was decoded from, retained for
	// read-only object hash/equality verification (§4.F, §4.H Design Notes).
	Raw []byte
}

// idCursor tracks per-stream consumption position as properties are
// decoded; a nested inline property set shares its parent's cursor and
// streams rather than declaring its own (only the outermost set in an
// object's property-set blob owns the three ID streams).
type idCursor struct {
	oids, osids, ctxids []CompactID
	oidPos, osidPos, ctxPos int
}

func (c *idCursor) nextOID() (CompactID, error) {
	if c.oidPos >= len(c.oids) {
		return 0, fmt.Errorf("propertyset: %w: OIDs stream exhausted", ErrArgument)
	}
	v := c.oids[c.oidPos]
	c.oidPos++
	return v, nil
}

func (c *idCursor) nextOIDs(n uint32) ([]CompactID, error) {
	out := make([]CompactID, n)
	for i := range out {
		v, err := c.nextOID()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *idCursor) nextOSID() (CompactID, error) {
	if c.osidPos >= len(c.osids) {
		return 0, fmt.Errorf("propertyset: %w: OSIDs stream exhausted", ErrArgument)
	}
	v := c.osids[c.osidPos]
	c.osidPos++
	return v, nil
}

func (c *idCursor) nextOSIDs(n uint32) ([]CompactID, error) {
	out := make([]CompactID, n)
	for i := range out {
		v, err := c.nextOSID()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *idCursor) nextCtxID() (CompactID, error) {
	if c.ctxPos >= len(c.ctxids) {
		return 0, fmt.Errorf("propertyset: %w: ContextIDs stream exhausted", ErrArgument)
	}
	v := c.ctxids[c.ctxPos]
	c.ctxPos++
	return v, nil
}

func (c *idCursor) nextCtxIDs(n uint32) ([]CompactID, error) {
	out := make([]CompactID, n)
	for i := range out {
		v, err := c.nextCtxID()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadPropertySet decodes one top-level property set: cProperties, its
// header array, the three ID streams, then each property's value in
// declaration order (§4.F). The reader's remaining bytes at call time are
// expected to hold exactly one property set; trailing bytes past the last
// property's value are not an error (callers that need exact-size framing
// enforce it via the enclosing chunk reference's cb).
func ReadPropertySet(r *Reader) (PropertySet, error) {
	startOffset := r.Offset()
	cProperties, err := r.U16()
	if err != nil {
		return PropertySet{}, err
	}

	headerReader, err := r.Sub(4 * int(cProperties))
	if err != nil {
		return PropertySet{}, fmt.Errorf("propertyset: header array: %w", err)
	}
	headers := make([]PropertyHeader, cProperties)
	for i := range headers {
		raw, err := headerReader.U32()
		if err != nil {
			return PropertySet{}, err
		}
		headers[i] = decodePropertyHeader(raw)
	}

	oids, osids, ctxids, err := readIDStreams(r)
	if err != nil {
		return PropertySet{}, fmt.Errorf("propertyset: id streams: %w", err)
	}
	cursor := &idCursor{oids: oids, osids: osids, ctxids: ctxids}

	props := make([]Property, len(headers))
	for i, h := range headers {
		p, err := decodePropertyValue(r, cursor, h)
		if err != nil {
			return PropertySet{}, fmt.Errorf("propertyset: property %d (id 0x%X): %w", i, h.PropertyID, err)
		}
		props[i] = p
	}

	raw, _ := peekRawSince(r, startOffset)
	return PropertySet{Properties: props, OIDs: oids, OSIDs: osids, ContextIDs: ctxids, Raw: raw}, nil
}

// peekRawSince returns the bytes of the underlying buffer from startOffset
// to the reader's current offset, used to retain a read-only object's
// property-set bytes verbatim.
func peekRawSince(r *Reader, startOffset int) ([]byte, error) {
	end := r.Offset()
	// Walk back: Reader doesn't expose its buffer directly, so reconstruct
	// via Seek+Bytes against a throwaway cursor positioned at startOffset.
	tmp := &Reader{buf: r.buf, off: startOffset}
	return tmp.Bytes(end - startOffset)
}

func readIDStreams(r *Reader) (oids, osids, ctxids []CompactID, err error) {
	oidRaw, err := r.U32()
	if err != nil {
		return nil, nil, nil, err
	}
	oidHdr := decodeIDStreamHeader(oidRaw)
	oids, err = readIDStream(r, oidHdr.Count)
	if err != nil {
		return nil, nil, nil, err
	}
	if oidHdr.OsidStreamNotPresent {
		return oids, nil, nil, nil
	}

	osidRaw, err := r.U32()
	if err != nil {
		return nil, nil, nil, err
	}
	osidHdr := decodeIDStreamHeader(osidRaw)
	osids, err = readIDStream(r, osidHdr.Count)
	if err != nil {
		return nil, nil, nil, err
	}
	if !osidHdr.ExtendedStreamsPresent {
		return oids, osids, nil, nil
	}

	ctxRaw, err := r.U32()
	if err != nil {
		return nil, nil, nil, err
	}
	ctxHdr := decodeIDStreamHeader(ctxRaw)
	ctxids, err = readIDStream(r, ctxHdr.Count)
	if err != nil {
		return nil, nil, nil, err
	}
	return oids, osids, ctxids, nil
}

func decodePropertyValue(r *Reader, cursor *idCursor, h PropertyHeader) (Property, error) {
	p := Property{Header: h}
	switch h.DataType {
	case PropertyNoData:
		// nothing to read
	case PropertyBool:
		p.Bool = h.ValueBit
	case PropertyInline1Byte:
		b, err := r.Bytes(1)
		if err != nil {
			return p, err
		}
		p.Raw = append([]byte(nil), b...)
	case PropertyInline2Bytes:
		b, err := r.Bytes(2)
		if err != nil {
			return p, err
		}
		p.Raw = append([]byte(nil), b...)
	case PropertyInline4Bytes:
		b, err := r.Bytes(4)
		if err != nil {
			return p, err
		}
		p.Raw = append([]byte(nil), b...)
	case PropertyInline8Bytes:
		b, err := r.Bytes(8)
		if err != nil {
			return p, err
		}
		p.Raw = append([]byte(nil), b...)
	case PropertyPrefixedBytes:
		n, err := r.U32()
		if err != nil {
			return p, err
		}
		b, err := r.Bytes(int(n))
		if err != nil {
			return p, err
		}
		p.Raw = append([]byte(nil), b...)
	case PropertyObjectID:
		id, err := cursor.nextOID()
		if err != nil {
			return p, err
		}
		p.ObjectIDs = []CompactID{id}
	case PropertyArrayOfObjectIDs:
		n, err := r.U32()
		if err != nil {
			return p, err
		}
		ids, err := cursor.nextOIDs(n)
		if err != nil {
			return p, err
		}
		p.ObjectIDs = ids
	case PropertyObjectSpaceID:
		id, err := cursor.nextOSID()
		if err != nil {
			return p, err
		}
		p.SpaceIDs = []CompactID{id}
	case PropertyArrayOfObjectSpaceIDs:
		n, err := r.U32()
		if err != nil {
			return p, err
		}
		ids, err := cursor.nextOSIDs(n)
		if err != nil {
			return p, err
		}
		p.SpaceIDs = ids
	case PropertyContextID:
		id, err := cursor.nextCtxID()
		if err != nil {
			return p, err
		}
		p.ContextIDs = []CompactID{id}
	case PropertyArrayOfContextIDs:
		n, err := r.U32()
		if err != nil {
			return p, err
		}
		ids, err := cursor.nextCtxIDs(n)
		if err != nil {
			return p, err
		}
		p.ContextIDs = ids
	case PropertyArrayOfPropertyValues:
		count, err := r.U32()
		if err != nil {
			return p, err
		}
		tag, err := r.U8()
		if err != nil {
			return p, err
		}
		if PropertyDataType(tag) != PropertyNestedPropertySet {
			return p, fmt.Errorf("propertyset: %w: ArrayOfPropertyValues inline tag 0x%X, want PropertySet",
				ErrUnrecognizedPropertyDataType, tag)
		}
		nested := make([]PropertySet, count)
		for i := range nested {
			ps, err := readNestedPropertySet(r, cursor)
			if err != nil {
				return p, err
			}
			nested[i] = ps
		}
		p.Nested = nested
	case PropertyNestedPropertySet:
		ps, err := readNestedPropertySet(r, cursor)
		if err != nil {
			return p, err
		}
		p.Nested = []PropertySet{ps}
	default:
		return p, fmt.Errorf("propertyset: %w: 0x%X", ErrUnrecognizedPropertyDataType, uint8(h.DataType))
	}
	return p, nil
}

// readNestedPropertySet decodes a property set inline within another set's
// value blob: its own cProperties/header array, but sharing the enclosing
// set's ID stream cursor rather than declaring new streams (§4.F).
func readNestedPropertySet(r *Reader, cursor *idCursor) (PropertySet, error) {
	cProperties, err := r.U16()
	if err != nil {
		return PropertySet{}, err
	}
	headerReader, err := r.Sub(4 * int(cProperties))
	if err != nil {
		return PropertySet{}, fmt.Errorf("nested propertyset: header array: %w", err)
	}
	headers := make([]PropertyHeader, cProperties)
	for i := range headers {
		raw, err := headerReader.U32()
		if err != nil {
			return PropertySet{}, err
		}
		headers[i] = decodePropertyHeader(raw)
	}
	props := make([]Property, len(headers))
	for i, h := range headers {
		pr, err := decodePropertyValue(r, cursor, h)
		if err != nil {
			return PropertySet{}, fmt.Errorf("nested propertyset: property %d: %w", i, err)
		}
		props[i] = pr
	}
	return PropertySet{Properties: props}, nil
}

// EncodePropertyHeader is exported for fixture builders in tests.
func EncodePropertyHeader(h PropertyHeader) uint32 { return encodePropertyHeader(h) }
