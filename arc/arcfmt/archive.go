// Package arcfmt reads and writes the "SGS." archive container: a flat
// index of named entries, each optionally compressed with the dictionary
// window codec in lzwindow.go.
package arcfmt

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	magicTag    = "SGS."
	versionTag  = "DAT 1.00"
	headerSize  = 16
	entrySize   = 0x20
	nameField   = 16
	versionSize = 12 // magic(4) + version tag, zero-padded to 12
)

// Kind names the subset of spec.md §7's error taxonomy this package
// declares. Every format package defines its own Kind; the taxonomy is
// shared in meaning across formats, not as a single Go type. This
// package raises BadMagic, BadPlacement and Truncated; UnsupportedFormat
// is declared but not raised here.
type Kind int

const (
	KindBadMagic Kind = iota
	KindBadPlacement
	KindTruncated
	KindUnsupportedFormat
)

// CodecError wraps one of this package's error kinds.
type CodecError struct {
	Kind Kind
	Msg  string
}

func (e *CodecError) Error() string { return e.Msg }

func errf(k Kind, format string, args ...any) error {
	return &CodecError{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Entry describes one file recorded in the archive index.
type Entry struct {
	Name         string
	IsPacked     bool
	StoredSize   uint32
	UnpackedSize uint32
	Offset       uint32
}

// Archive is the parsed index of a container file; entries are immutable
// once built by Open.
type Archive struct {
	Entries []Entry
	size    int64
}

// Open parses the header and index of an archive already loaded into buf.
func Open(buf []byte) (*Archive, error) {
	if len(buf) < headerSize {
		return nil, errf(KindTruncated, "archive shorter than header (%d bytes)", len(buf))
	}
	if string(buf[0:4]) != magicTag {
		return nil, errf(KindBadMagic, "bad magic %q", buf[0:4])
	}
	tag := strings.TrimRight(string(buf[4:12]), "\x00")
	if tag != versionTag {
		return nil, errf(KindBadMagic, "bad version tag %q", tag)
	}

	count := binary.LittleEndian.Uint32(buf[12:16])
	need := headerSize + int(count)*entrySize
	if len(buf) < need {
		return nil, errf(KindTruncated, "index truncated: need %d bytes, have %d", need, len(buf))
	}

	entries := make([]Entry, count)
	for i := uint32(0); i < count; i++ {
		off := headerSize + int(i)*entrySize
		rec := buf[off : off+entrySize]

		name := string(rec[0x00:0x10])
		if idx := strings.IndexByte(name, 0); idx >= 0 {
			name = name[:idx]
		}

		e := Entry{
			Name:         name,
			IsPacked:     rec[0x13] != 0,
			StoredSize:   binary.LittleEndian.Uint32(rec[0x14:0x18]),
			UnpackedSize: binary.LittleEndian.Uint32(rec[0x18:0x1C]),
			Offset:       binary.LittleEndian.Uint32(rec[0x1C:0x20]),
		}
		if int64(e.Offset)+int64(e.StoredSize) > int64(len(buf)) {
			return nil, errf(KindBadPlacement, "entry %q: offset+size (%d) exceeds archive length (%d)",
				e.Name, int64(e.Offset)+int64(e.StoredSize), len(buf))
		}
		entries[i] = e
	}

	return &Archive{Entries: entries, size: int64(len(buf))}, nil
}

// Payload returns the entry's stored (still possibly packed) bytes.
func (a *Archive) Payload(buf []byte, e Entry) []byte {
	return buf[e.Offset : e.Offset+e.StoredSize]
}

// Unpack extracts every entry of the archive held in buf into outDir,
// decompressing packed entries. Names containing '/' create subdirectories.
func Unpack(buf []byte, outDir string) error {
	ar, err := Open(buf)
	if err != nil {
		return err
	}
	for _, e := range ar.Entries {
		payload := ar.Payload(buf, e)
		data := payload
		if e.IsPacked {
			data, err = Decompress(payload, e.UnpackedSize)
			if err != nil {
				return fmt.Errorf("entry %q: %w", e.Name, err)
			}
		}

		path := filepath.Join(outDir, filepath.FromSlash(e.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// packInput is one file staged for packing.
type packInput struct {
	name string
	data []byte
}

// Pack walks inDir recursively and builds an archive image in memory.
// When compress is true, every entry is run through the LZ-window
// Compress matcher; the CLI defaults compress to false per spec.md §6.
func Pack(inDir string, compress bool) ([]byte, error) {
	var inputs []packInput
	err := filepath.Walk(inDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(inDir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, packInput{name: filepath.ToSlash(rel), data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].name < inputs[j].name })

	type built struct {
		name       string
		isPacked   bool
		stored     []byte
		unpackSize uint32
	}
	entries := make([]built, len(inputs))
	for i, in := range inputs {
		name := in.name
		if len(name) > nameField {
			name = name[:nameField]
		}
		stored := in.data
		isPacked := false
		if compress {
			if c, err := Compress(in.data); err == nil && len(c) < len(in.data) {
				stored = c
				isPacked = true
			}
		}
		entries[i] = built{name: name, isPacked: isPacked, stored: stored, unpackSize: uint32(len(in.data))}
	}

	indexRegion := headerSize + len(entries)*entrySize
	out := make([]byte, indexRegion)
	copy(out[0:4], magicTag)
	copy(out[4:12], versionTag)
	binary.LittleEndian.PutUint32(out[12:16], uint32(len(entries)))

	offset := uint32(indexRegion)
	for i, e := range entries {
		rec := out[headerSize+i*entrySize : headerSize+(i+1)*entrySize]
		copy(rec[0x00:0x10], []byte(e.name))
		if e.isPacked {
			rec[0x13] = 1
		}
		binary.LittleEndian.PutUint32(rec[0x14:0x18], uint32(len(e.stored)))
		binary.LittleEndian.PutUint32(rec[0x18:0x1C], e.unpackSize)
		binary.LittleEndian.PutUint32(rec[0x1C:0x20], offset)

		out = append(out, e.stored...)
		offset += uint32(len(e.stored))
	}

	return out, nil
}
