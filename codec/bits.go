package codec

import "fmt"

// PackBits packs bit-mode units (one 0/1 value per unit) into bytes, most
// significant bit first. The last byte is padded with zero bits.
func PackBits(units []byte) []byte {
	out := make([]byte, (len(units)+7)/8)
	for i, u := range units {
		if u&1 == 1 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// UnpackBits returns the first n bit-mode units stored in b.
func UnpackBits(b []byte, n int) ([]byte, error) {
	if n < 0 || n > len(b)*8 {
		return nil, fmt.Errorf("%w: %d bits requested from %d bytes", ErrTruncatedInput, n, len(b))
	}
	units := make([]byte, n)
	for i := range units {
		units[i] = (b[i/8] >> (7 - uint(i%8))) & 1
	}
	return units, nil
}
