// Package encoding decodes the EUC-KR strings stored in Ragnarok Online files.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// Returns the input unchanged if it does not decode.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// FixedStringToUTF8 decodes a fixed-size, null-padded EUC-KR field.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return EUCKRToUTF8(data)
}

// UTF8ToEUCKR encodes s as EUC-KR. Characters outside EUC-KR leave the
// input bytes unchanged.
func UTF8ToEUCKR(s string) []byte {
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}

// UTF8ToFixedString encodes s as EUC-KR into a null-padded field of the given
// size. Used to build fixture files.
func UTF8ToFixedString(s string, size int) []byte {
	out := make([]byte, size)
	copy(out, UTF8ToEUCKR(s))
	return out
}
