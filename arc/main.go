// Command arc extracts and builds "SGS." archive containers.
package main

import (
	"fmt"
	"os"

	"sgsvn/arc/arcfmt"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  arc extract <archive> <out_dir>")
	fmt.Println("  arc pack <in_dir> <archive>")
	fmt.Println("  arc info <archive>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		err = runExtract(os.Args[2], os.Args[3])
	case "pack":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		err = runPack(os.Args[2], os.Args[3])
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

func runExtract(archive, outDir string) error {
	buf, err := os.ReadFile(archive)
	if err != nil {
		return err
	}
	if err := arcfmt.Unpack(buf, outDir); err != nil {
		return err
	}
	fmt.Println("Done.")
	return nil
}

func runPack(inDir, archive string) error {
	// Pack currently forces no compression per spec.md §6.
	buf, err := arcfmt.Pack(inDir, false)
	if err != nil {
		return err
	}
	if err := os.WriteFile(archive, buf, 0644); err != nil {
		return err
	}
	fmt.Printf("Packed %s (%d bytes)\n", archive, len(buf))
	return nil
}

func runInfo(archive string) error {
	buf, err := os.ReadFile(archive)
	if err != nil {
		return err
	}
	ar, err := arcfmt.Open(buf)
	if err != nil {
		return err
	}
	fmt.Printf("%d entries\n", len(ar.Entries))
	for i, e := range ar.Entries {
		fmt.Printf("  [%4d] %-24s packed=%-5v stored=%-8d unpacked=%-8d offset=0x%08X\n",
			i, e.Name, e.IsPacked, e.StoredSize, e.UnpackedSize, e.Offset)
	}
	return nil
}
