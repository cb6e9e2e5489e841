package unit

// Binary byte sizes.
const (
	Byte     = 1
	Kibibyte = 1 << 10 * Byte
	Mebibyte = 1 << 10 * Kibibyte
)
