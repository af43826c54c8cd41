package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joshuapare/onekit/internal/format"
)

// GUID is a 16-byte identifier in the mixed-endian layout Microsoft formats use
// for `{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}` strings: the first three
// fields (4+2+2 bytes) are stored little-endian on disk but printed
// big-endian; the last two fields (2+6 bytes) are printed in storage order.
type GUID [16]byte

// NilGUID is the all-zero GUID.
var NilGUID GUID

// ParseGUID reads a GUID from 16 raw bytes as they appear on disk.
func ParseGUID(b []byte) (GUID, error) {
	var g GUID
	if len(b) < 16 {
		return g, fmt.Errorf("guid: %w (have %d, need 16)", format.ErrTruncated, len(b))
	}
	copy(g[:], b[:16])
	return g, nil
}

// String renders the canonical curly-brace form, e.g.
// "{7B5C52E4-D88C-4DA7-AEB1-5378D02996D3}".
func (g GUID) String() string {
	return fmt.Sprintf("{%08X-%04X-%04X-%02X%02X-%02X%02X%02X%02X%02X%02X}",
		format.ReadU32(g[0:4], 0),
		format.ReadU16(g[4:6], 0),
		format.ReadU16(g[6:8], 0),
		g[8], g[9],
		g[10], g[11], g[12], g[13], g[14], g[15])
}

// IsZero reports whether g is the all-zero GUID.
func (g GUID) IsZero() bool {
	return g == NilGUID
}

// GUIDFromCurlyString parses the canonical "{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}"
// form back into a GUID. Returns ArgumentError-flavored failures (via the
// sentinel in errors.go) on malformed input.
func GUIDFromCurlyString(s string) (GUID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	parts := strings.Split(s, "-")
	if len(parts) != 5 || len(parts[0]) != 8 || len(parts[1]) != 4 || len(parts[2]) != 4 ||
		len(parts[3]) != 4 || len(parts[4]) != 12 {
		return GUID{}, fmt.Errorf("guid: %w: malformed curly string %q", ErrArgument, s)
	}

	var raw [16]byte
	var d1 uint32
	var d2, d3 uint16
	if _, err := fmt.Sscanf(parts[0], "%08X", &d1); err != nil {
		return GUID{}, fmt.Errorf("guid: %w: %v", ErrArgument, err)
	}
	if _, err := fmt.Sscanf(parts[1], "%04X", &d2); err != nil {
		return GUID{}, fmt.Errorf("guid: %w: %v", ErrArgument, err)
	}
	if _, err := fmt.Sscanf(parts[2], "%04X", &d3); err != nil {
		return GUID{}, fmt.Errorf("guid: %w: %v", ErrArgument, err)
	}
	format.PutU32(raw[0:4], 0, d1)
	format.PutU16(raw[4:6], 0, d2)
	format.PutU16(raw[6:8], 0, d3)

	tail := parts[3] + parts[4]
	for i := 0; i < 8; i++ {
		var b uint8
		if _, err := fmt.Sscanf(tail[i*2:i*2+2], "%02X", &b); err != nil {
			return GUID{}, fmt.Errorf("guid: %w: %v", ErrArgument, err)
		}
		raw[8+i] = b
	}
	return GUID(raw), nil
}

// ToUUID converts to a google/uuid.UUID, useful when interoperating with
// code that expects the standard library-adjacent UUID representation
// (fixture generation, synthetic placeholder identifiers).
func (g GUID) ToUUID() uuid.UUID {
	return uuid.UUID(g)
}

// GUIDFromUUID converts a google/uuid.UUID into the on-disk GUID layout.
func GUIDFromUUID(u uuid.UUID) GUID {
	return GUID(u)
}

// NewRandomGUID synthesizes a random GUID via google/uuid. Used by fixture
// builders and by tools that need a placeholder identifier, never by the
// decode path itself (every GUID the decoder sees comes from the file).
func NewRandomGUID() GUID {
	return GUIDFromUUID(uuid.New())
}

// ExtendedGUID pairs a GUID with a small disambiguator `n`, forming the
// identity used for objects (oid), object spaces (osid), contexts (ctxid)
// and revisions (rid).
type ExtendedGUID struct {
	GUID GUID
	N    uint32
}

// NilExtendedGUID is the zero value: a nil GUID with n == 0.
var NilExtendedGUID ExtendedGUID

// IsZero reports whether e is the nil ExtendedGUID.
func (e ExtendedGUID) IsZero() bool {
	return e.GUID.IsZero() && e.N == 0
}

// String renders "{guid},n".
func (e ExtendedGUID) String() string {
	return fmt.Sprintf("%s,%d", e.GUID.String(), e.N)
}
