package xmrcrypto

// AppendVarint appends a Monero-style varint (7 bits per byte, MSB of each
// byte set when more bytes follow) to dst and returns the extended slice.
func AppendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Varint encodes v as a standalone varint byte slice.
func Varint(v uint64) []byte { return AppendVarint(nil, v) }

// ReadVarint decodes a varint from the front of b, returning the value and
// the number of bytes consumed, or ok=false if b is malformed/truncated.
func ReadVarint(b []byte) (v uint64, n int, ok bool) {
	var shift uint
	for n < len(b) {
		c := b[n]
		n++
		v |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return v, n, true
		}
		shift += 7
		if shift > 63 {
			return 0, 0, false
		}
	}
	return 0, 0, false
}
