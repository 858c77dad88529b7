package domain

// Zero overwrites a byte slice with zeros. Key material is wiped once a cipher
// has been built from it.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
