package onenote

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/onekit/store"
)

// TextRun is one reconstructed span of a RichTextOENode's text, paired with
// its formatting and (optionally) its per-run data object (§4.L).
type TextRun struct {
	Text       string
	Formatting store.PropertySet
	Data       *store.PropertySet
}

// lcidCodepages maps the RichEditTextLangID values this decoder recognizes
// to their MBCS code page. Locales not listed fall back to Windows-1252
// (§9 Design Notes: "ship an LCID→code-page table ... defaulting to
// Windows-1252").
var lcidCodepages = map[uint32]*charmap.Charmap{
	1033: charmap.Windows1252, // en-US
	1036: charmap.Windows1252, // fr-FR
	1031: charmap.Windows1252, // de-DE
	1040: charmap.Windows1252, // it-IT
	1034: charmap.Windows1252, // es-ES
}

func codepageFor(langID uint32) *encoding.Decoder {
	if cm, ok := lcidCodepages[langID]; ok {
		return cm.NewDecoder()
	}
	return charmap.Windows1252.NewDecoder()
}

// ReconstructTextRuns populates node.TextRuns from its RichEditTextUnicode/
// TextExtendedAscii, TextRunIndex, TextRunFormatting and (optional)
// TextRunData properties (§4.L). A node with none of these leaves TextRuns
// nil; the caller (Build) is responsible for bumping minVerbosity in that
// case.
func ReconstructTextRuns(node *Node) {
	indexProp, ok := node.Properties[uint32(PropertyTextRunIndex)]
	if !ok {
		return
	}
	boundaries := decodeU32Array(indexProp.Raw)
	if len(boundaries) == 0 {
		return
	}

	var formatting []store.PropertySet
	if p, ok := node.Properties[uint32(PropertyTextRunFormatting)]; ok {
		formatting = p.Nested
	}
	var data []store.PropertySet
	if p, ok := node.Properties[uint32(PropertyTextRunData)]; ok {
		data = p.Nested
	}

	unicodeProp, hasUnicode := node.Properties[uint32(PropertyRichEditTextUnicode)]
	asciiProp, hasAscii := node.Properties[uint32(PropertyTextExtendedAscii)]

	langID := uint32(defaultLangID)
	if p, ok := node.Properties[uint32(PropertyRichEditTextLangID)]; ok && len(p.Raw) >= 2 {
		langID = uint32(binary.LittleEndian.Uint16(p.Raw))
	}

	runs := make([]TextRun, 0, len(boundaries))
	prev := uint32(0)
	for i, next := range boundaries {
		var text string
		switch {
		case hasUnicode:
			start, end := int(prev)*2, int(next)*2
			if end > len(unicodeProp.Raw) {
				goto done
			}
			text = decodeUTF16Run(unicodeProp.Raw[start:end])
		case hasAscii:
			start, end := int(prev), int(next)
			if end > len(asciiProp.Raw) {
				goto done
			}
			text = decodeMBCSRun(asciiProp.Raw[start:end], langID)
		default:
			goto done
		}

		{
			run := TextRun{Text: text}
			if i < len(formatting) {
				run.Formatting = formatting[i]
			}
			if i < len(data) {
				run.Data = &data[i]
			}
			runs = append(runs, run)
		}
		prev = next
	}
done:

	for len(runs) > 0 && runs[len(runs)-1].Text == "" {
		runs = runs[:len(runs)-1]
	}
	node.TextRuns = runs
}

// decodeU32Array reinterprets raw as a sequence of little-endian uint32
// values (TextRunIndex's wire form, §4.L).
func decodeU32Array(raw []byte) []uint32 {
	n := len(raw) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
	}
	return out
}

// decodeUTF16Run decodes a UTF-16LE byte slice, truncating at the first
// embedded NUL code unit and tolerating isolated surrogates by letting
// utf16.Decode substitute the Unicode replacement character for them
// (§4.L: "NUL termination", "isolated-surrogate tolerance").
func decodeUTF16Run(raw []byte) string {
	units := make([]uint16, len(raw)/2)
	for i := range units {
		u := binary.LittleEndian.Uint16(raw[i*2 : i*2+2])
		if u == 0 {
			units = units[:i]
			break
		}
		units[i] = u
	}
	return string(utf16.Decode(units))
}

// decodeMBCSRun decodes an extended-ASCII byte slice using the code page
// associated with langID, falling back to Windows-1252 (§4.L, §9).
func decodeMBCSRun(raw []byte, langID uint32) string {
	dec := codepageFor(langID)
	out, err := dec.Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
