package common

// WipeByteArray overwrites b with zeros. It is used to drop plaintext
// passwords read from a terminal as soon as they are no longer needed.
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
