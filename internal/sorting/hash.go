// Package sorting maps image data to one of the fixed houses.
//
// The hash is the classic 31-multiplier string hash evaluated with 32-bit
// wraparound at every step. Assignment depends on the exact wrapped value,
// so the arithmetic must stay in int32.
package sorting

import "unicode/utf16"

// Hash returns the 32-bit wraparound hash of the UTF-16 code units of s.
func Hash(s string) int32 {
	var h int32
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			h = h*31 + hi
			h = h*31 + lo
			continue
		}
		h = h*31 + r
	}
	return h
}

// HashBytes hashes b treating every byte as a single code unit.
func HashBytes(b []byte) int32 {
	var h int32
	for _, c := range b {
		h = h*31 + int32(c)
	}
	return h
}
