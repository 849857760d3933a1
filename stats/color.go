package stats

import (
	"fmt"
	"unicode/utf16"
)

// BranchToColor maps a branch name to a stable HSL colour for charts.
// The hue is a djb2-style hash of the name's UTF-16 code units, with 32-bit
// wrap-around, reduced modulo 360.
func BranchToColor(branch string) string {
	var hash int32 = 5381
	for _, unit := range utf16.Encode([]rune(branch)) {
		hash = (hash * 33) ^ int32(unit)
	}
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("hsl(%d, 70%%, 55%%)", h%360)
}
