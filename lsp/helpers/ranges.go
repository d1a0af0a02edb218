package helpers

import (
	"bennypowers.dev/embedls/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ToPosition converts a byte offset in text to an LSP position
func ToPosition(text string, offset int) protocol.Position {
	p := position.OffsetToPosition(text, offset)
	return protocol.Position{Line: p.Line, Character: p.Character}
}

// ToRange converts a half-open byte span in text to an LSP range
func ToRange(text string, start, end int) protocol.Range {
	return protocol.Range{
		Start: ToPosition(text, start),
		End:   ToPosition(text, end),
	}
}

// ToOffset converts an LSP position to a byte offset in text
func ToOffset(text string, pos protocol.Position) int {
	return position.PositionToOffset(text, position.Position{Line: pos.Line, Character: pos.Character})
}

// RangesIntersect checks if two LSP ranges intersect.
// Ranges are treated as half-open intervals [start, end) where the end position is exclusive.
//
// Examples:
//   - [0:0, 0:5) and [0:3, 0:7) -> true (overlap from 0:3 to 0:5)
//   - [0:0, 0:5) and [0:5, 0:10) -> false (adjacent but not overlapping)
//   - [0:0, 1:0) and [0:5, 0:10) -> true (first range includes line 0:5)
func RangesIntersect(a, b protocol.Range) bool {
	if a.End.Line < b.Start.Line {
		return false
	}
	if a.End.Line == b.Start.Line && a.End.Character <= b.Start.Character {
		return false
	}
	if b.End.Line < a.Start.Line {
		return false
	}
	if b.End.Line == a.Start.Line && b.End.Character <= a.Start.Character {
		return false
	}
	return true
}
