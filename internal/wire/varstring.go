package wire

import "errors"

// ErrStringTooLarge is returned when a varstring would exceed the caller's
// declared maximum encoded size.
var ErrStringTooLarge = errors.New("wire: varstring exceeds maximum size")

// AppendVarstring appends a varint length prefix followed by the raw UTF-8
// bytes of s. No trailing NUL is written.
func AppendVarstring(buf []byte, s string) []byte {
	buf = AppendVarint(buf, uint32(len(s)))
	return append(buf, s...)
}

// ReadVarstring reads a varint length prefix followed by that many bytes,
// returning the decoded string and the offset just past it.
func ReadVarstring(buf []byte, off int) (string, int, error) {
	n, next, err := ReadVarint(buf, off)
	if err != nil {
		return "", 0, err
	}
	if next+int(n) > len(buf) {
		return "", 0, ErrVarintTruncated
	}
	return string(buf[next : next+int(n)]), next + int(n), nil
}

// CheckStringSize returns ErrStringTooLarge if s's varstring encoding would
// exceed maxSize bytes.
func CheckStringSize(s string, maxSize int) error {
	if VarintLen(uint32(len(s)))+len(s) > maxSize {
		return ErrStringTooLarge
	}
	return nil
}
