package anmfmt

import (
	"bytes"
	"testing"
)

func samplePalette() Palette {
	var pal Palette
	for i := range pal {
		pal[i] = Color{R: byte(i), G: byte(255 - i), B: byte(i / 2)}
	}
	return pal
}

func TestPaletteRoundTrip(t *testing.T) {
	pal := samplePalette()
	disk := writePalette(pal)
	if len(disk) != paletteBytes {
		t.Fatalf("palette bytes = %d, want %d", len(disk), paletteBytes)
	}
	got, err := readPalette(disk)
	if err != nil {
		t.Fatal(err)
	}
	if got != pal {
		t.Fatal("palette round trip mismatch")
	}
}

func TestUncompressedFrameRoundTrip(t *testing.T) {
	// spec.md §8: encode(decode(a)) == a for an uncompressed ANM whose
	// width is a multiple of 4.
	pal := samplePalette()
	frame := Frame{
		Left: 1, Top: 2, Width: 8, Height: 3,
		Pixels: []byte{
			1, 2, 3, 4, 5, 6, 7, 8,
			9, 10, 11, 12, 13, 14, 15, 16,
			17, 18, 19, 20, 21, 22, 23, 24,
		},
	}
	anim := &Animation{Palette: pal, Compressed: false, Frames: []Frame{frame}}

	buf, err := Encode(anim)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Frames) != 1 {
		t.Fatalf("frame count = %d, want 1", len(decoded.Frames))
	}
	got := decoded.Frames[0]
	if got.Left != frame.Left || got.Top != frame.Top || got.Width != frame.Width || got.Height != frame.Height {
		t.Fatalf("frame geometry mismatch: got %+v, want %+v", got, frame)
	}
	if !bytes.Equal(got.Pixels, frame.Pixels) {
		t.Fatalf("pixel mismatch: got %v, want %v", got.Pixels, frame.Pixels)
	}

	buf2, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if !bytes.Equal(buf, buf2) {
		t.Fatalf("encode(decode(a)) != a")
	}
}

func TestColumnRLESingleBlockNoRun(t *testing.T) {
	// spec.md §8 scenario 4: a 4x1 frame holding a single block encodes
	// to exactly 4 bytes (no run byte).
	pixels := []byte{1, 2, 3, 4}
	payload, err := encodeColumnRLE(pixels, 4, 1)
	if err != nil {
		t.Fatalf("encodeColumnRLE: %v", err)
	}
	if len(payload) != 4 {
		t.Fatalf("payload length = %d, want 4", len(payload))
	}

	got, err := decodeColumnRLE(payload, 4, 1)
	if err != nil {
		t.Fatalf("decodeColumnRLE: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatalf("got %v, want %v", got, pixels)
	}
}

func TestColumnRLERunRoundTrip(t *testing.T) {
	width, height := 8, 20
	pixels := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Rows repeat every 3 rows within each 4-column strip to
			// exercise both literal and run-encoded blocks, including a
			// two-row-total group (the run-length edge case).
			pixels[y*width+x] = byte((y / 3) % 5)
		}
	}

	payload, err := encodeColumnRLE(pixels, width, height)
	if err != nil {
		t.Fatalf("encodeColumnRLE: %v", err)
	}
	got, err := decodeColumnRLE(payload, width, height)
	if err != nil {
		t.Fatalf("decodeColumnRLE: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatalf("round trip mismatch")
	}
}

func TestColumnRLEExactlyTwoIdenticalRows(t *testing.T) {
	width, height := 4, 3
	pixels := []byte{
		9, 9, 9, 9,
		9, 9, 9, 9,
		1, 2, 3, 4,
	}
	payload, err := encodeColumnRLE(pixels, width, height)
	if err != nil {
		t.Fatalf("encodeColumnRLE: %v", err)
	}
	got, err := decodeColumnRLE(payload, width, height)
	if err != nil {
		t.Fatalf("decodeColumnRLE: %v", err)
	}
	if !bytes.Equal(got, pixels) {
		t.Fatalf("got %v, want %v", got, pixels)
	}
}

func TestCompressedFrameRoundTrip(t *testing.T) {
	pal := samplePalette()
	width, height := 8, 6
	pixels := make([]byte, width*height)
	for i := range pixels {
		pixels[i] = byte(i % 7)
	}
	frame := Frame{Width: uint16(width), Height: uint16(height), Pixels: pixels}
	anim := &Animation{Palette: pal, Compressed: true, Frames: []Frame{frame}}

	buf, err := Encode(anim)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded.Frames[0].Pixels, pixels) {
		t.Fatalf("compressed round trip mismatch")
	}
}
