package classify

// TripleQuoteAt reports whether src holds an opening triple quote, single or double,
// at offset. A string prefix made of r and b characters, which the scanner
// includes in the token start, is skipped first.
func TripleQuoteAt(src string, offset int) bool {
	if offset < 0 || offset >= len(src) {
		return false
	}
	i := offset
	for n := 0; n < 2 && i < len(src) && (src[i] == 'r' || src[i] == 'b'); n++ {
		i++
	}
	if i+3 > len(src) {
		return false
	}
	q := src[i]
	if q != '\'' && q != '"' {
		return false
	}
	return src[i+1] == q && src[i+2] == q
}
