package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DecimalBytes is a []byte which encodes in json as an array of decimal
// strings, one per byte: []byte{0, 42} is ["0","42"]. It is the format the
// circuit tooling reads witnesses and public inputs in.
type DecimalBytes []byte

// MarshalJSON implements json.Marshaler. A nil slice encodes as [].
func (b DecimalBytes) MarshalJSON() ([]byte, error) {
	strs := make([]string, len(b))
	for i, v := range b {
		strs[i] = strconv.Itoa(int(v))
	}
	return json.Marshal(strs)
}

// UnmarshalJSON implements json.Unmarshaler. Plain numbers are accepted as
// well as decimal strings.
func (b *DecimalBytes) UnmarshalJSON(data []byte) error {
	var raw []json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid decimal byte array: %w", err)
	}
	out := make(DecimalBytes, len(raw))
	for i, n := range raw {
		v, err := strconv.ParseUint(n.String(), 10, 8)
		if err != nil {
			return fmt.Errorf("invalid byte value %q at position %d", n, i)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}

// DecimalBytesList converts a list of byte slices.
func DecimalBytesList(list [][]byte) []DecimalBytes {
	out := make([]DecimalBytes, len(list))
	for i, b := range list {
		out[i] = b
	}
	return out
}

// BytesList converts back a list of DecimalBytes.
func BytesList(list []DecimalBytes) [][]byte {
	out := make([][]byte, len(list))
	for i, b := range list {
		out[i] = b
	}
	return out
}
