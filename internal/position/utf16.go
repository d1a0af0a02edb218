// Package position converts between byte offsets in Go strings and LSP
// positions, which count columns in UTF-16 code units.
package position

import (
	"math"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a zero-based line and UTF-16 column
type Position struct {
	Line      uint32
	Character uint32
}

// UTF16ToByteOffset converts a UTF-16 column within s to a byte offset.
// A column that lands inside a surrogate pair clamps to the start of that rune;
// columns past the end clamp to len(s).
func UTF16ToByteOffset(s string, utf16Col int) int {
	units := 0
	offset := 0
	for offset < len(s) && units < utf16Col {
		r, size := utf8.DecodeRuneInString(s[offset:])
		n := 1
		if r != utf8.RuneError || size != 1 {
			n = utf16.RuneLen(r)
		}
		if units+n > utf16Col {
			break
		}
		units += n
		offset += size
	}
	return offset
}

// ByteOffsetToUTF16 counts the UTF-16 code units in s[:byteOffset].
// A byte offset inside a multi-byte rune counts only the runes before it.
func ByteOffsetToUTF16(s string, byteOffset int) int {
	if byteOffset > len(s) {
		byteOffset = len(s)
	}
	units := 0
	offset := 0
	for offset < byteOffset {
		r, size := utf8.DecodeRuneInString(s[offset:])
		if offset+size > byteOffset {
			break
		}
		if r == utf8.RuneError && size == 1 {
			units++
		} else {
			units += utf16.RuneLen(r)
		}
		offset += size
	}
	return units
}

// StringLengthUTF16 returns the length of s in UTF-16 code units
func StringLengthUTF16(s string) int {
	return ByteOffsetToUTF16(s, len(s))
}

// OffsetToPosition converts a byte offset in text into a line and UTF-16
// column. Offsets outside text are clamped to its bounds.
func OffsetToPosition(text string, offset int) Position {
	offset = max(0, min(offset, len(text)))
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	line := strings.Count(text[:lineStart], "\n")
	return Position{
		Line:      clampUint32(line),
		Character: clampUint32(ByteOffsetToUTF16(text[lineStart:], offset-lineStart)),
	}
}

// PositionToOffset converts a line and UTF-16 column into a byte offset in
// text. Lines past the end map to len(text); columns past the end of a line
// map to the end of that line.
func PositionToOffset(text string, pos Position) int {
	lineStart := 0
	for range pos.Line {
		next := strings.IndexByte(text[lineStart:], '\n')
		if next < 0 {
			return len(text)
		}
		lineStart += next + 1
	}
	lineEnd := strings.IndexByte(text[lineStart:], '\n')
	if lineEnd < 0 {
		lineEnd = len(text)
	} else {
		lineEnd += lineStart
	}
	return lineStart + UTF16ToByteOffset(text[lineStart:lineEnd], int(pos.Character))
}

func clampUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
