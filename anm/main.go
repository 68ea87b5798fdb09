// Command anm decodes ANM animation files to indexed BMP frames and
// re-encodes them, per spec.md §4.3 and §6.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"sgsvn/anm/anmfmt"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  anm decode <in.anm> <out_dir>")
	fmt.Println("  anm encode <in_dir> <out.anm> [true|false]")
	fmt.Println("  anm info <in.anm>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		err = runDecode(os.Args[2], os.Args[3])
	case "encode":
		if len(os.Args) < 4 || len(os.Args) > 5 {
			usage()
			os.Exit(1)
		}
		compress := true
		if len(os.Args) == 5 {
			compress, err = strconv.ParseBool(os.Args[4])
			if err != nil {
				fmt.Println("Error: third argument must be true or false")
				os.Exit(1)
			}
		}
		err = runEncode(os.Args[2], os.Args[3], compress)
	case "info":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		err = runInfo(os.Args[2])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func runDecode(inFile, outDir string) error {
	buf, err := os.ReadFile(inFile)
	if err != nil {
		return err
	}
	anim, err := anmfmt.Decode(buf)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := anmfmt.WritePaletteText(filepath.Join(outDir, "palette.txt"), anim.Palette); err != nil {
		return err
	}
	if err := anmfmt.WriteMetadataText(filepath.Join(outDir, "metadata.txt"), anim.Frames); err != nil {
		return err
	}

	for i, f := range anim.Frames {
		bmp, err := anmfmt.EncodeBMP(int(f.Width), int(f.Height), f.Pixels, anim.Palette)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		name := fmt.Sprintf("frame_%04d.bmp", i)
		if err := os.WriteFile(filepath.Join(outDir, name), bmp, 0644); err != nil {
			return err
		}
	}
	fmt.Printf("Decoded %d frames to %s\n", len(anim.Frames), outDir)
	return nil
}

func runEncode(inDir, outFile string, compress bool) error {
	pal, err := anmfmt.ReadPaletteText(filepath.Join(inDir, "palette.txt"))
	if err != nil {
		return err
	}
	meta, err := anmfmt.ReadMetadataText(filepath.Join(inDir, "metadata.txt"))
	if err != nil {
		return err
	}

	var frames []anmfmt.Frame
	for i := 0; ; i++ {
		path := filepath.Join(inDir, fmt.Sprintf("frame_%04d.bmp", i))
		if _, statErr := os.Stat(path); statErr != nil {
			break
		}
		width, height, pixels, _, err := anmfmt.DecodeBMP(path)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		left, top := 0, 0
		if m, ok := meta[i]; ok {
			left, top = m.Left, m.Top
		}
		frames = append(frames, anmfmt.Frame{
			Left: uint16(left), Top: uint16(top),
			Width: uint16(width), Height: uint16(height),
			Pixels: pixels,
		})
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frame_NNNN.bmp files found in %s", inDir)
	}

	anim := &anmfmt.Animation{Palette: pal, Compressed: compress, Frames: frames}
	buf, err := anmfmt.Encode(anim)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, buf, 0644); err != nil {
		return err
	}
	fmt.Printf("Encoded %d frames to %s (%d bytes)\n", len(frames), outFile, len(buf))
	return nil
}

func runInfo(inFile string) error {
	buf, err := os.ReadFile(inFile)
	if err != nil {
		return err
	}
	anim, err := anmfmt.Decode(buf)
	if err != nil {
		return err
	}
	fmt.Printf("frames=%d compressed=%v\n", len(anim.Frames), anim.Compressed)
	for i, f := range anim.Frames {
		fmt.Printf("  [%4d] left=%d top=%d width=%d height=%d\n", i, f.Left, f.Top, f.Width, f.Height)
	}
	return nil
}
