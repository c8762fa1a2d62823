// Package formats parses Ragnarok Online model files and exposes their
// geometry as mesh sources for export.
//
// RSM (Resource Model) files carry textured triangle meshes, one per node.
// GND (Ground) files carry the terrain as a grid of textured quads.
package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Faultbox/dxs-export/pkg/encoding"
)

// binReader reads little-endian fields and keeps the first error, so parsers
// can read a run of fields and check once.
type binReader struct {
	r         *bytes.Reader
	truncated error
	err       error
}

func newBinReader(data []byte, truncated error) *binReader {
	return &binReader{r: bytes.NewReader(data), truncated: truncated}
}

// read decodes v; what names the field in the error.
func (br *binReader) read(v any, what string) {
	if br.err != nil {
		return
	}
	if err := binary.Read(br.r, binary.LittleEndian, v); err != nil {
		br.err = fmt.Errorf("%w: reading %s", br.truncated, what)
	}
}

// skip discards n bytes.
func (br *binReader) skip(n int64, what string) {
	if br.err != nil {
		return
	}
	if n < 0 || int64(br.r.Len()) < n {
		br.err = fmt.Errorf("%w: skipping %s", br.truncated, what)
		return
	}
	br.r.Seek(n, io.SeekCurrent)
}

// raw reads n bytes.
func (br *binReader) raw(n int, what string) []byte {
	if br.err != nil {
		return nil
	}
	if n < 0 || br.r.Len() < n {
		br.err = fmt.Errorf("%w: reading %s", br.truncated, what)
		return nil
	}
	buf := make([]byte, n)
	br.r.Read(buf)
	return buf
}

// str reads a fixed-length, null-padded EUC-KR string.
func (br *binReader) str(n int, what string) string {
	return encoding.FixedStringToUTF8(br.raw(n, what))
}

// count reads an int32 element count and checks it against limit.
func (br *binReader) count(limit int32, what string) int {
	var n int32
	br.read(&n, what+" count")
	if br.err == nil && (n < 0 || n > limit) {
		br.err = fmt.Errorf("invalid %s count: %d", what, n)
		return 0
	}
	return int(n)
}

func (br *binReader) remaining() int {
	return br.r.Len()
}
