package onenote

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/onekit/store"
)

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func utf16le(s string) []byte {
	var out []byte
	for _, r := range s {
		out = append(out, u16le(uint16(r))...)
	}
	return out
}

func TestReconstructTextRuns_Unicode(t *testing.T) {
	text := "helloworld"
	var index []byte
	index = append(index, u32le(5)...)  // "hello"
	index = append(index, u32le(10)...) // "world"

	node := &Node{
		Properties: map[uint32]store.Property{
			uint32(PropertyTextRunIndex):        {Raw: index},
			uint32(PropertyRichEditTextUnicode): {Raw: utf16le(text)},
		},
	}
	ReconstructTextRuns(node)
	require.Len(t, node.TextRuns, 2)
	assert.Equal(t, "hello", node.TextRuns[0].Text)
	assert.Equal(t, "world", node.TextRuns[1].Text)
}

func TestReconstructTextRuns_NoIndexLeavesRunsNil(t *testing.T) {
	node := &Node{Properties: map[uint32]store.Property{}}
	ReconstructTextRuns(node)
	assert.Nil(t, node.TextRuns)
}

func TestReconstructTextRuns_FormattingPairing(t *testing.T) {
	var index []byte
	index = append(index, u32le(2)...)

	node := &Node{
		Properties: map[uint32]store.Property{
			uint32(PropertyTextRunIndex):        {Raw: index},
			uint32(PropertyRichEditTextUnicode): {Raw: utf16le("ab")},
			uint32(PropertyTextRunFormatting): {
				Nested: []store.PropertySet{{Properties: []store.Property{{Header: store.PropertyHeader{PropertyID: 7}}}}},
			},
		},
	}
	ReconstructTextRuns(node)
	require.Len(t, node.TextRuns, 1)
	require.Len(t, node.TextRuns[0].Formatting.Properties, 1)
	assert.Equal(t, uint32(7), node.TextRuns[0].Formatting.Properties[0].Header.PropertyID)
}

func TestReconstructTextRuns_NulTerminatesUnicodeRun(t *testing.T) {
	raw := utf16le("ab")
	raw = append(raw, u16le(0)...)
	raw = append(raw, utf16le("cd")...)

	var index []byte
	index = append(index, u32le(uint32(len(raw)/2))...)

	node := &Node{
		Properties: map[uint32]store.Property{
			uint32(PropertyTextRunIndex):        {Raw: index},
			uint32(PropertyRichEditTextUnicode): {Raw: raw},
		},
	}
	ReconstructTextRuns(node)
	require.Len(t, node.TextRuns, 1)
	assert.Equal(t, "ab", node.TextRuns[0].Text)
}

func TestReconstructTextRuns_MBCSFallsBackToWindows1252(t *testing.T) {
	index := u32le(1)
	node := &Node{
		Properties: map[uint32]store.Property{
			uint32(PropertyTextRunIndex):      {Raw: index},
			uint32(PropertyTextExtendedAscii): {Raw: []byte{0x41}},
			uint32(PropertyRichEditTextLangID): {Raw: u16le(9999)},
		},
	}
	ReconstructTextRuns(node)
	require.Len(t, node.TextRuns, 1)
	assert.Equal(t, "A", node.TextRuns[0].Text)
}

func TestReconstructTextRuns_TrimsTrailingEmptyRun(t *testing.T) {
	var index []byte
	index = append(index, u32le(2)...)
	index = append(index, u32le(2)...) // zero-width trailing run

	node := &Node{
		Properties: map[uint32]store.Property{
			uint32(PropertyTextRunIndex):        {Raw: index},
			uint32(PropertyRichEditTextUnicode): {Raw: utf16le("ab")},
		},
	}
	ReconstructTextRuns(node)
	require.Len(t, node.TextRuns, 1)
	assert.Equal(t, "ab", node.TextRuns[0].Text)
}
