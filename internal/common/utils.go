package common

// WipeByteArray zeroes b in place. The CLI calls it on passwords read from
// the terminal once they have been hashed. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	clear(b)
}
