package arcfmt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	src := t.TempDir()
	files := map[string][]byte{
		"a.txt":     []byte("hello"),
		"sub/b.bin": {0x00, 0xFF},
	}
	for name, data := range files {
		path := filepath.Join(src, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	buf, err := Pack(src, false)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	// spec.md §8 scenario 1: header(16) + two 32-byte index entries + 5 + 2
	// payload bytes = 87 bytes total.
	if want := 16 + 2*32 + 5 + 2; len(buf) != want {
		t.Fatalf("packed size = %d, want %d", len(buf), want)
	}

	dst := t.TempDir()
	if err := Unpack(buf, dst); err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dst, filepath.FromSlash(name)))
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if string(got) != string(want) {
			t.Errorf("%s: got %q, want %q", name, got, want)
		}
	}
}

func TestOpenBadMagic(t *testing.T) {
	buf := make([]byte, 32)
	copy(buf, "NOPE")
	if _, err := Open(buf); err == nil {
		t.Fatal("expected error for bad magic")
	} else if ce, ok := err.(*CodecError); !ok || ce.Kind != KindBadMagic {
		t.Fatalf("expected KindBadMagic, got %v", err)
	}
}

func TestOpenBadPlacement(t *testing.T) {
	buf := make([]byte, headerSize+entrySize)
	copy(buf[0:4], magicTag)
	copy(buf[4:12], versionTag)
	buf[12] = 1 // count = 1
	rec := buf[headerSize : headerSize+entrySize]
	copy(rec[0:4], "x")
	rec[0x14] = 0xFF // stored_size hugely exceeds the buffer
	rec[0x15] = 0xFF
	rec[0x16] = 0xFF
	rec[0x17] = 0xFF

	if _, err := Open(buf); err == nil {
		t.Fatal("expected error for bad placement")
	} else if ce, ok := err.(*CodecError); !ok || ce.Kind != KindBadPlacement {
		t.Fatalf("expected KindBadPlacement, got %v", err)
	}
}
