// Package position converts between byte offsets and the line and UTF-16
// column pairs editors exchange.
package position

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ToByte converts a UTF-16 column in line to a byte offset. A column in
// the middle of a surrogate pair clamps to the start of its rune.
func ToByte(line string, col uint32) int {
	units := uint32(0)
	i := 0
	for i < len(line) && units < col {
		r, size := utf8.DecodeRuneInString(line[i:])
		n := uint32(1)
		if r != utf8.RuneError || size != 1 {
			n = uint32(utf16.RuneLen(r))
		}
		if n == 2 && units+1 == col {
			break
		}
		units += n
		i += size
	}
	return i
}

// ToUTF16 converts a byte offset in line to a UTF-16 column.
func ToUTF16(line string, offset int) uint32 {
	offset = min(max(offset, 0), len(line))
	units := uint32(0)
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(line[i:])
		if i+size > offset {
			break
		}
		if r == utf8.RuneError && size == 1 {
			units++
		} else {
			units += uint32(utf16.RuneLen(r))
		}
		i += size
	}
	return units
}

// Length is the UTF-16 length of s.
func Length(s string) uint32 {
	return ToUTF16(s, len(s))
}

// Offset converts a line and UTF-16 column to a byte offset in content.
// The end of the document, one line past the last, is valid.
func Offset(content string, line, col uint32) (int, bool) {
	start := 0
	for range line {
		i := strings.IndexByte(content[start:], '\n')
		if i < 0 {
			return 0, false
		}
		start += i + 1
	}
	end := strings.IndexByte(content[start:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += start
	}
	text := content[start:end]
	if col > Length(text) {
		return 0, false
	}
	return start + ToByte(text, col), true
}

// At converts a byte offset in content to a line and UTF-16 column.
func At(content string, offset int) (line, col uint32) {
	offset = min(max(offset, 0), len(content))
	head := content[:offset]
	line = uint32(strings.Count(head, "\n"))
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		head = head[i+1:]
	}
	return line, Length(head)
}
