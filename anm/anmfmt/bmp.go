package anmfmt

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
)

// The on-disk layout below (14-byte BITMAPFILEHEADER, 40-byte
// BITMAPINFOHEADER, 1024-byte BGRA palette) mirrors the fields the teacher
// toolkit hand-rolls into its own BMPHeader struct in bmp2gs.go, written
// directly here since encoding/binary.Write on a struct would still need
// the same offsets spelled out for the variable-size palette that follows.
const bmpPixelDataOffset = 14 + 40 + 1024

// EncodeBMP writes an 8-bit indexed BMP: bottom-up rows, 4-byte row
// padding, and a 1024-byte BGRA palette, per spec.md §4.3.
func EncodeBMP(width, height int, pixels []byte, pal Palette) ([]byte, error) {
	if len(pixels) != width*height {
		return nil, errf(KindUnsupportedFormat, "bmp: pixel buffer length %d != %d*%d", len(pixels), width, height)
	}

	rowSize := (width + 3) &^ 3
	imageSize := rowSize * height
	fileSize := bmpPixelDataOffset + imageSize

	out := make([]byte, fileSize)
	out[0], out[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(out[2:6], uint32(fileSize))
	binary.LittleEndian.PutUint32(out[10:14], uint32(bmpPixelDataOffset))

	binary.LittleEndian.PutUint32(out[14:18], 40)
	binary.LittleEndian.PutUint32(out[18:22], uint32(int32(width)))
	binary.LittleEndian.PutUint32(out[22:26], uint32(int32(height)))
	binary.LittleEndian.PutUint16(out[26:28], 1)
	binary.LittleEndian.PutUint16(out[28:30], 8)
	binary.LittleEndian.PutUint32(out[34:38], uint32(imageSize))
	binary.LittleEndian.PutUint32(out[46:50], 256)
	binary.LittleEndian.PutUint32(out[50:54], 256)

	palOff := 54
	for i, c := range pal {
		out[palOff+i*4+0] = c.B
		out[palOff+i*4+1] = c.G
		out[palOff+i*4+2] = c.R
		out[palOff+i*4+3] = 0
	}

	for y := 0; y < height; y++ {
		// BMP rows are stored bottom-up.
		srcRow := height - 1 - y
		dst := bmpPixelDataOffset + y*rowSize
		copy(out[dst:dst+width], pixels[srcRow*width:srcRow*width+width])
	}

	return out, nil
}

// DecodeBMP reads back an 8-bit indexed BMP sidecar produced by EncodeBMP
// (or any other tool's 8bpp indexed BMP), using bild/imgio the same way
// the teacher's bmp2gs.go opens BMP files, then recovering the palette
// indices from the resulting *image.Paletted.
func DecodeBMP(path string) (width, height int, pixels []byte, pal Palette, err error) {
	img, err := imgio.Open(path)
	if err != nil {
		return 0, 0, nil, pal, fmt.Errorf("anm: opening bmp: %w", err)
	}
	paletted, ok := img.(*image.Paletted)
	if !ok {
		return 0, 0, nil, pal, errf(KindUnsupportedFormat, "anm: %s is not an 8bpp indexed bitmap", path)
	}

	bounds := paletted.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	pixels = make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pixels[y*width+x] = paletted.ColorIndexAt(bounds.Min.X+x, bounds.Min.Y+y)
		}
	}

	for i := 0; i < 256 && i < len(paletted.Palette); i++ {
		r32, g32, b32, _ := paletted.Palette[i].RGBA()
		pal[i] = Color{R: byte(r32 >> 8), G: byte(g32 >> 8), B: byte(b32 >> 8)}
	}

	return width, height, pixels, pal, nil
}
