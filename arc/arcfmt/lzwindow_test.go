package arcfmt

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestDecompressLiteral(t *testing.T) {
	// spec.md §8 scenario 2: 0x00 'A' decodes to "A".
	got, err := Decompress([]byte{0x00, 'A'}, 1)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if string(got) != "A" {
		t.Fatalf("got %q, want %q", got, "A")
	}
}

func TestDecompressBackrefOnEmptyOutput(t *testing.T) {
	// spec.md §8 scenario 2: a back-reference with distance 1 into an
	// empty output buffer must not crash.
	src := []byte{0x80, 0x01, 0x00}
	got, err := Decompress(src, 1)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d bytes, want 1", len(got))
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte("hello, hello, hello, hello, world!"),
		bytes.Repeat([]byte{0xAB}, 500),
		[]byte(""),
		[]byte("no repeats here at all 12345"),
	}
	for _, want := range cases {
		compressed, err := Compress(want)
		if err != nil {
			t.Fatalf("Compress: %v", err)
		}
		got, err := Decompress(compressed, uint32(len(want)))
		if err != nil {
			t.Fatalf("Decompress: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("round trip mismatch: got %q, want %q", got, want)
		}
	}
}

func TestCompressDecompressRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, 8192)
	for i := range buf {
		// biased toward repetition so the matcher exercises back-refs
		if i > 16 && rng.Intn(3) == 0 {
			buf[i] = buf[i-1-rng.Intn(16)]
		} else {
			buf[i] = byte(rng.Intn(256))
		}
	}

	compressed, err := Compress(buf)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := Decompress(compressed, uint32(len(buf)))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, buf) {
		t.Fatalf("round trip mismatch over %d bytes", len(buf))
	}
}
