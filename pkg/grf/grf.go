// Package grf reads Ragnarok Online GRF archives (version 0x200), the
// container model and ground files are shipped in.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/dxs-export/pkg/encoding"
)

const (
	grfMagic      = "Master of Magic"
	grfVersion    = 0x200
	headerSize    = 46
	entryInfoSize = 17

	flagFile      = 0x01
	flagEncrypted = 0x02
)

// GRF errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrFileNotFound       = errors.New("file not found in archive")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

// Archive represents an opened GRF archive.
type Archive struct {
	file    *os.File
	header  Header
	entries map[string]*Entry
}

// Header contains GRF file header information.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry represents a file entry in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Open opens a GRF archive for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	archive := &Archive{
		file:    file,
		entries: make(map[string]*Entry),
	}

	if err := archive.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if err := archive.readFileTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading file table: %w", err)
	}

	return archive, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	if err := binary.Read(io.NewSectionReader(a.file, 0, headerSize), binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != grfVersion {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	r := io.NewSectionReader(a.file, int64(a.header.TableOffset)+headerSize, 1<<62)

	var compressedSize, uncompressedSize uint32
	if err := binary.Read(r, binary.LittleEndian, &compressedSize); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &uncompressedSize); err != nil {
		return err
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return err
	}
	table, err := inflate(compressed, uncompressedSize)
	if err != nil {
		return err
	}

	count := a.header.FileCount - a.header.Seed - 7
	offset := 0
	for i := uint32(0); i < count; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 || offset+nameEnd+1+entryInfoSize > len(table) {
			return fmt.Errorf("entry %d: table truncated", i)
		}
		name := encoding.EUCKRToUTF8(table[offset : offset+nameEnd])
		offset += nameEnd + 1

		info := table[offset : offset+entryInfoSize]
		offset += entryInfoSize

		entry := &Entry{
			Name:             normalizePath(name),
			CompressedSize:   binary.LittleEndian.Uint32(info[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(info[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(info[8:]),
			Flags:            info[12],
			Offset:           binary.LittleEndian.Uint32(info[13:]),
		}

		// Directory entries have no file flag.
		if entry.Flags&flagFile != 0 {
			a.entries[entry.Name] = entry
		}
	}

	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for path := range a.entries {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists. Lookups ignore case and slash direction.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[normalizePath(path)]
	return ok
}

// Read returns the uncompressed contents of a file.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.entries[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if entry.Flags&flagEncrypted != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, path)
	}

	if entry.CompressedSize > entry.AlignedSize {
		return nil, fmt.Errorf("entry %s: inconsistent sizes", path)
	}

	data := make([]byte, entry.AlignedSize)
	if _, err := a.file.ReadAt(data, int64(entry.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if entry.CompressedSize == entry.UncompressedSize {
		return data[:entry.UncompressedSize], nil
	}

	result, err := inflate(data[:entry.CompressedSize], entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return result, nil
}

func inflate(compressed []byte, size uint32) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}
