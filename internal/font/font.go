// Package font holds a 6 row by 4 column bitmap font for small LED panels.
//
// Rows are stored MSB left: bit 3 is column 0. Tables written the other way
// round, with bit 0 drawn at column 0, come out mirrored here.
package font

import "unicode/utf8"

const (
	Rows = 6
	Cols = 4
	// Advance is the horizontal step per character: the glyph plus one blank
	// column.
	Advance = Cols + 1
)

// Glyph is one character. Bit 3 of each row is the leftmost column.
type Glyph [Rows]uint8

// On reports whether the pixel at row r, column c is lit.
func (g Glyph) On(r, c int) bool {
	if r < 0 || r >= Rows || c < 0 || c >= Cols {
		return false
	}
	return g[r]&(1<<(Cols-1-c)) != 0
}

var blank Glyph

var letters = [26]Glyph{
	{0b0110, 0b1001, 0b1111, 0b1001, 0b1001, 0b1001}, // A
	{0b1110, 0b1001, 0b1110, 0b1001, 0b1001, 0b1110},
	{0b0111, 0b1000, 0b1000, 0b1000, 0b1000, 0b0111},
	{0b1110, 0b1001, 0b1001, 0b1001, 0b1001, 0b1110},
	{0b1111, 0b1000, 0b1110, 0b1000, 0b1000, 0b1111},
	{0b1111, 0b1000, 0b1110, 0b1000, 0b1000, 0b1000},
	{0b0111, 0b1000, 0b1011, 0b1001, 0b1001, 0b0111},
	{0b1001, 0b1001, 0b1111, 0b1001, 0b1001, 0b1001},
	{0b0111, 0b0010, 0b0010, 0b0010, 0b0010, 0b0111},
	{0b0011, 0b0001, 0b0001, 0b0001, 0b1001, 0b0110},
	{0b1001, 0b1010, 0b1100, 0b1010, 0b1010, 0b1001},
	{0b1000, 0b1000, 0b1000, 0b1000, 0b1000, 0b1111},
	{0b1001, 0b1111, 0b1111, 0b1001, 0b1001, 0b1001},
	{0b1001, 0b1101, 0b1101, 0b1011, 0b1011, 0b1001},
	{0b0110, 0b1001, 0b1001, 0b1001, 0b1001, 0b0110},
	{0b1110, 0b1001, 0b1001, 0b1110, 0b1000, 0b1000},
	{0b0110, 0b1001, 0b1001, 0b1011, 0b1010, 0b0101},
	{0b1110, 0b1001, 0b1001, 0b1110, 0b1010, 0b1001},
	{0b0111, 0b1000, 0b0110, 0b0001, 0b0001, 0b1110},
	{0b1111, 0b0010, 0b0010, 0b0010, 0b0010, 0b0010},
	{0b1001, 0b1001, 0b1001, 0b1001, 0b1001, 0b0110},
	{0b1001, 0b1001, 0b1001, 0b1001, 0b0110, 0b0110},
	{0b1001, 0b1001, 0b1001, 0b1111, 0b1111, 0b1001},
	{0b1001, 0b1001, 0b0110, 0b0110, 0b1001, 0b1001},
	{0b1001, 0b1001, 0b0110, 0b0010, 0b0010, 0b0010},
	{0b1111, 0b0001, 0b0010, 0b0100, 0b1000, 0b1111}, // Z
}

var digits = [10]Glyph{
	{0b0110, 0b1001, 0b1001, 0b1001, 0b1001, 0b0110},
	{0b0010, 0b0110, 0b0010, 0b0010, 0b0010, 0b0111},
	{0b1110, 0b0001, 0b0010, 0b0100, 0b1000, 0b1111},
	{0b1110, 0b0001, 0b0110, 0b0001, 0b0001, 0b1110},
	{0b1001, 0b1001, 0b1111, 0b0001, 0b0001, 0b0001},
	{0b1111, 0b1000, 0b1110, 0b0001, 0b0001, 0b1110},
	{0b0110, 0b1000, 0b1110, 0b1001, 0b1001, 0b0110},
	{0b1111, 0b0001, 0b0010, 0b0100, 0b0100, 0b0100},
	{0b0110, 0b1001, 0b0110, 0b1001, 0b1001, 0b0110},
	{0b0110, 0b1001, 0b1001, 0b0111, 0b0001, 0b0110},
}

// Lookup returns the glyph for ch. Lower case letters share the upper case
// shapes; anything unsupported is blank.
func Lookup(ch rune) Glyph {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return letters[ch-'A']
	case ch >= 'a' && ch <= 'z':
		return letters[ch-'a']
	case ch >= '0' && ch <= '9':
		return digits[ch-'0']
	}
	return blank
}

// TextWidth is the number of columns s advances.
func TextWidth(s string) int {
	return utf8.RuneCountInString(s) * Advance
}
