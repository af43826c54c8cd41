package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIDStreamHeader packs {count:24, extendedStreamsPresent:1,
// osidStreamNotPresent:1, reserved:6}.
func buildIDStreamHeader(count uint32, extended, osidNotPresent bool) uint32 {
	v := count & 0xFFFFFF
	if extended {
		v |= 1 << 24
	}
	if osidNotPresent {
		v |= 1 << 25
	}
	return v
}

func TestReadPropertySet_NoDataAndInline(t *testing.T) {
	headers := []PropertyHeader{
		{PropertyID: 1, DataType: PropertyNoData},
		{PropertyID: 2, DataType: PropertyBool, ValueBit: true},
		{PropertyID: 3, DataType: PropertyInline4Bytes},
	}
	var buf []byte
	buf = append(buf, byte(len(headers)), 0) // cProperties u16
	for _, h := range headers {
		buf = append(buf, encodeU32LE(EncodePropertyHeader(h))...)
	}
	buf = append(buf, encodeU32LE(buildIDStreamHeader(0, false, true))...) // OID stream: empty, no OSID/Ctx
	buf = append(buf, encodeU32LE(0xDEADBEEF)...)                          // value for property 3

	ps, err := ReadPropertySet(NewReader(buf))
	require.NoError(t, err)
	require.Len(t, ps.Properties, 3)
	assert.True(t, ps.Properties[1].Bool)
	assert.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, ps.Properties[2].Raw)
}

func TestReadPropertySet_ObjectIDFromStream(t *testing.T) {
	headers := []PropertyHeader{
		{PropertyID: 10, DataType: PropertyObjectID},
	}
	var buf []byte
	buf = append(buf, byte(len(headers)), 0)
	buf = append(buf, encodeU32LE(EncodePropertyHeader(headers[0]))...)
	buf = append(buf, encodeU32LE(buildIDStreamHeader(1, false, false))...) // 1 OID, osid stream present
	buf = append(buf, encodeU32LE(uint32(NewCompactID(42, 1)))...)
	buf = append(buf, encodeU32LE(buildIDStreamHeader(0, false, false))...) // OSID stream, empty, extended not present

	ps, err := ReadPropertySet(NewReader(buf))
	require.NoError(t, err)
	require.Len(t, ps.Properties[0].ObjectIDs, 1)
	assert.Equal(t, uint32(42), ps.Properties[0].ObjectIDs[0].GUIDIndex())
}

func TestReadPropertySet_UnrecognizedDataType(t *testing.T) {
	h := PropertyHeader{PropertyID: 1, DataType: PropertyDataType(0x1F)}
	var buf []byte
	buf = append(buf, 1, 0)
	buf = append(buf, encodeU32LE(EncodePropertyHeader(h))...)
	buf = append(buf, encodeU32LE(buildIDStreamHeader(0, false, true))...)

	_, err := ReadPropertySet(NewReader(buf))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnrecognizedPropertyDataType)
}
