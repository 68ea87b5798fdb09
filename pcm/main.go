// Command pcm inspects and converts between raw PCM sound blobs and WAV
// containers, per spec.md §4.4 and §6.
package main

import (
	"fmt"
	"os"

	"sgsvn/pcm/pcmfmt"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  pcm info <file>")
	fmt.Println("  pcm towav <in> <out> [version]")
	fmt.Println("  pcm topcm <in> <out> [version]")
	fmt.Println("version is one of: unrestricted | pregtb | gtb | postgtb (default unrestricted)")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		if len(os.Args) != 3 {
			usage()
			os.Exit(1)
		}
		err = runInfo(os.Args[2])
	case "towav":
		if len(os.Args) < 4 || len(os.Args) > 5 {
			usage()
			os.Exit(1)
		}
		err = runToWAV(os.Args[2], os.Args[3], versionArg(os.Args, 4))
	case "topcm":
		if len(os.Args) < 4 || len(os.Args) > 5 {
			usage()
			os.Exit(1)
		}
		err = runToPCM(os.Args[2], os.Args[3], versionArg(os.Args, 4))
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func versionArg(args []string, idx int) string {
	if idx < len(args) {
		return args[idx]
	}
	return "unrestricted"
}

func runInfo(path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := pcmfmt.Decode(buf, pcmfmt.Unrestricted)
	if err != nil {
		return err
	}
	fmt.Printf("channels=%d sample_rate=%d bits_per_sample=%d signed=%v samples=%d bytes\n",
		s.Channels, s.SampleRate, s.BitsPerSample, s.Signed, len(s.Samples))
	return nil
}

func runToWAV(inPath, outPath, versionStr string) error {
	version, err := pcmfmt.ParseVersion(versionStr)
	if err != nil {
		return err
	}
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	src, err := pcmfmt.Decode(buf, version)
	if err != nil {
		return err
	}
	target := pcmfmt.WAVTarget(src.Format)
	converted, err := pcmfmt.Convert(src, target)
	if err != nil {
		return err
	}
	out, err := pcmfmt.EncodeWAV(converted)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d bytes)\n", outPath, len(out))
	return nil
}

func runToPCM(inPath, outPath, versionStr string) error {
	version, err := pcmfmt.ParseVersion(versionStr)
	if err != nil {
		return err
	}
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	src, err := pcmfmt.Decode(buf, version)
	if err != nil {
		return err
	}
	target := pcmfmt.RawTarget(version)
	converted, err := pcmfmt.Convert(src, target)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, converted.Samples, 0644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d bytes)\n", outPath, len(converted.Samples))
	return nil
}
