package anmfmt

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WritePaletteText writes the "iii: RRR GGG BBB" sidecar consumed on
// re-encode, one line per palette entry.
func WritePaletteText(path string, pal Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, c := range pal {
		fmt.Fprintf(w, "%03d: %03d %03d %03d\n", i, c.R, c.G, c.B)
	}
	return w.Flush()
}

// ReadPaletteText parses a palette.txt sidecar back into a Palette.
func ReadPaletteText(path string) (Palette, error) {
	var pal Palette
	f, err := os.Open(path)
	if err != nil {
		return pal, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		colonIdx := strings.Index(line, ":")
		if colonIdx < 0 {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(line[:colonIdx]))
		if err != nil || idx < 0 || idx >= 256 {
			continue
		}
		fields := strings.Fields(line[colonIdx+1:])
		if len(fields) != 3 {
			continue
		}
		r, _ := strconv.Atoi(fields[0])
		g, _ := strconv.Atoi(fields[1])
		b, _ := strconv.Atoi(fields[2])
		pal[idx] = Color{R: byte(r), G: byte(g), B: byte(b)}
	}
	return pal, scanner.Err()
}

// FrameMeta is one line of metadata.txt: "i left top width height".
type FrameMeta struct {
	Index         int
	Left, Top     int
	Width, Height int
}

// WriteMetadataText writes the metadata.txt sidecar.
func WriteMetadataText(path string, frames []Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, fr := range frames {
		fmt.Fprintf(w, "%d %d %d %d %d\n", i, fr.Left, fr.Top, fr.Width, fr.Height)
	}
	return w.Flush()
}

// ReadMetadataText parses metadata.txt into a map keyed by frame index.
func ReadMetadataText(path string) (map[int]FrameMeta, error) {
	out := make(map[int]FrameMeta)
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 5 {
			continue
		}
		vals := make([]int, 5)
		ok := true
		for i, s := range fields {
			v, err := strconv.Atoi(s)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		out[vals[0]] = FrameMeta{Index: vals[0], Left: vals[1], Top: vals[2], Width: vals[3], Height: vals[4]}
	}
	return out, scanner.Err()
}
