package classfile

import (
	"strings"
	"unicode/utf8"
)

// decodeModifiedUtf8 converts the class-file string encoding to a Go string.
// NUL arrives as C0 80 and supplementary characters as surrogate pairs.
// Unpaired surrogates keep their three-byte form and malformed bytes are
// copied through, so ok is false but the text is still usable.
func decodeModifiedUtf8(b []byte) (s string, ok bool) {
	var sb strings.Builder
	sb.Grow(len(b))
	ok = true
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c != 0 && c&0x80 == 0:
			sb.WriteByte(c)
			i++
		case c&0xE0 == 0xC0 && continuation(b, i+1, 1):
			sb.WriteRune(rune(c&0x1F)<<6 | rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && continuation(b, i+1, 2):
			r := threeByte(b[i:])
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3]&0xF0 == 0xE0 && continuation(b, i+4, 2) {
				if low := threeByte(b[i+3:]); low >= 0xDC00 && low <= 0xDFFF {
					sb.WriteRune(0x10000 + (r-0xD800)<<10 + (low - 0xDC00))
					i += 6
					continue
				}
			}
			if r >= 0xD800 && r <= 0xDFFF {
				sb.Write(b[i : i+3])
			} else {
				sb.WriteRune(r)
			}
			i += 3
		default:
			sb.WriteByte(c)
			ok = false
			i++
		}
	}
	return sb.String(), ok
}

func continuation(b []byte, from, n int) bool {
	if from+n > len(b) {
		return false
	}
	for _, c := range b[from : from+n] {
		if c&0xC0 != 0x80 {
			return false
		}
	}
	return true
}

func threeByte(b []byte) rune {
	return rune(b[0]&0x0F)<<12 | rune(b[1]&0x3F)<<6 | rune(b[2]&0x3F)
}

// encodeModifiedUtf8 is the inverse of decodeModifiedUtf8.
func encodeModifiedUtf8(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
			// surrogate halves and stray bytes carried through from decoding
			if s[i] == 0xED && i+3 <= len(s) {
				out = append(out, s[i:i+3]...)
				i += 3
				continue
			}
			out = append(out, s[i])
			i++
			continue
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = appendThreeByte(out, r)
		default:
			r -= 0x10000
			out = appendThreeByte(out, 0xD800+r>>10)
			out = appendThreeByte(out, 0xDC00+r&0x3FF)
		}
		i += size
	}
	return out
}

func appendThreeByte(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte(r>>6&0x3F), 0x80|byte(r&0x3F))
}
