package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	"github.com/Faultbox/dxs-export/pkg/encoding"
)

// File is an entry to be written by Build.
type File struct {
	Name  string // slash or backslash separated
	Data  []byte
	Store bool // write uncompressed
}

// Build writes a version 0x200 archive holding files. Names are stored
// EUC-KR encoded with backslash separators.
func Build(w io.Writer, files []File) error {
	var body, table bytes.Buffer
	offset := uint32(0)

	for _, f := range files {
		data := f.Data
		if !f.Store {
			compressed, err := deflate(f.Data)
			if err != nil {
				return err
			}
			data = compressed
		}

		aligned := uint32(len(data))
		if aligned%8 != 0 {
			aligned += 8 - aligned%8
		}
		body.Write(data)
		body.Write(make([]byte, aligned-uint32(len(data))))

		name := strings.ReplaceAll(f.Name, "/", "\\")
		table.Write(encoding.UTF8ToEUCKR(name))
		table.WriteByte(0)
		binary.Write(&table, binary.LittleEndian, uint32(len(data)))
		binary.Write(&table, binary.LittleEndian, aligned)
		binary.Write(&table, binary.LittleEndian, uint32(len(f.Data)))
		table.WriteByte(flagFile)
		binary.Write(&table, binary.LittleEndian, offset)

		offset += aligned
	}

	compressedTable, err := deflate(table.Bytes())
	if err != nil {
		return err
	}

	header := Header{
		TableOffset: offset,
		FileCount:   uint32(len(files)) + 7,
		Version:     grfVersion,
	}
	copy(header.Magic[:], grfMagic)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(len(compressedTable)))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(compressedTable)

	_, err = w.Write(out.Bytes())
	return err
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
