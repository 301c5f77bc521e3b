package display

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BlockRune stands in for characters the fixed-width font has no glyph for.
const BlockRune = '█'

//nolint:gochecknoglobals // immutable lookup table.
var ligatures = map[rune]string{
	'ß': "ss",
	'æ': "ae", 'Æ': "AE",
	'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O",
	'ł': "l", 'Ł': "L",
	'đ': "d", 'Đ': "D",
	'þ': "th", 'Þ': "TH",
	'’': "'", '‘': "'",
	'“': "\"", '”': "\"",
	'–': "-", '—': "-",
	'…': "...",
}

// Transliterate folds s into printable ASCII: diacritics are stripped, a few
// ligatures are expanded and anything else becomes BlockRune. The result is at
// most maxLen bytes long when maxLen > 0, never splitting a multi-byte rune.
func Transliterate(s string, maxLen int) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range folded {
		var piece string
		switch {
		case r >= 32 && r <= 126:
			piece = string(r)
		case ligatures[r] != "":
			piece = ligatures[r]
		case unicode.IsSpace(r):
			piece = " "
		default:
			piece = string(BlockRune)
		}
		if maxLen > 0 && b.Len()+len(piece) > maxLen {
			break
		}
		b.WriteString(piece)
	}
	return b.String()
}
