// Command script disassembles bytecode scripts, exports their embedded
// strings for translation, and patches translations back in while
// preserving jump targets, per spec.md §4.5 and §6.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sgsvn/script/scriptfmt"
)

const defaultMaxLineLength = 50

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  script disasm|d <in> [out]")
	fmt.Println("  script export|e <in> [out]")
	fmt.Println("  script import|i <script> <text> [out] [max_line_length]")
	fmt.Println("  script batch-export <dir> [out_dir]")
	fmt.Println("  script batch-import <script_dir> <text_dir> [out_dir] [max_line_length]")
	fmt.Println("  --encoding <name|codepage> selects the text codec (default: Shift-JIS)")
	fmt.Println("  --dry-run on import/batch-import reports the size delta and any")
	fmt.Println("    diagnostics without writing the patched file")
}

func main() {
	args, dryRun := extractDryRunFlag(os.Args[1:])
	args, encodingName := extractEncodingFlag(args)
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	codec, err := scriptfmt.NewTextCodec(encodingName)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	switch args[0] {
	case "disasm", "d":
		if len(args) < 2 || len(args) > 3 {
			usage()
			os.Exit(1)
		}
		err = runDisasm(codec, args[1], outArg(args, 2, args[1], ".dis.txt"))
	case "export", "e":
		if len(args) < 2 || len(args) > 3 {
			usage()
			os.Exit(1)
		}
		err = runExport(codec, args[1], outArg(args, 2, args[1], ".txt"))
	case "import", "i":
		if len(args) < 3 || len(args) > 5 {
			usage()
			os.Exit(1)
		}
		out := outArg(args, 3, args[1], ".patched")
		maxLen := defaultMaxLineLength
		if len(args) == 5 {
			maxLen, err = strconv.Atoi(args[4])
			if err != nil {
				fmt.Println("Error: max_line_length must be an integer")
				os.Exit(1)
			}
		}
		err = runImport(codec, args[1], args[2], out, maxLen, dryRun)
	case "batch-export":
		if len(args) < 2 || len(args) > 3 {
			usage()
			os.Exit(1)
		}
		outDir := args[1]
		if len(args) == 3 {
			outDir = args[2]
		}
		err = runBatchExport(codec, args[1], outDir)
	case "batch-import":
		if len(args) < 3 || len(args) > 5 {
			usage()
			os.Exit(1)
		}
		outDir := args[1]
		if len(args) >= 4 {
			outDir = args[3]
		}
		maxLen := defaultMaxLineLength
		if len(args) == 5 {
			maxLen, err = strconv.Atoi(args[4])
			if err != nil {
				fmt.Println("Error: max_line_length must be an integer")
				os.Exit(1)
			}
		}
		err = runBatchImport(codec, args[1], args[2], outDir, maxLen, dryRun)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// extractEncodingFlag pulls a trailing/leading "--encoding <name>" pair
// out of args, returning the remaining positional args.
func extractEncodingFlag(args []string) (rest []string, encoding string) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--encoding" && i+1 < len(args) {
			encoding = args[i+1]
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+2:]...)
			return rest, encoding
		}
	}
	return args, ""
}

// extractDryRunFlag pulls a standalone "--dry-run" switch out of args,
// returning the remaining positional args.
func extractDryRunFlag(args []string) (rest []string, dryRun bool) {
	for i := 0; i < len(args); i++ {
		if args[i] == "--dry-run" {
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+1:]...)
			return rest, true
		}
	}
	return args, false
}

func outArg(args []string, idx int, inPath, suffix string) string {
	if idx < len(args) {
		return args[idx]
	}
	ext := filepath.Ext(inPath)
	return strings.TrimSuffix(inPath, ext) + suffix
}

func runDisasm(codec *scriptfmt.TextCodec, inPath, outPath string) error {
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	w, err := scriptfmt.WalkScript(buf, codec)
	if err != nil {
		return err
	}
	var b strings.Builder
	for _, instr := range w.Instructions {
		b.WriteString(instr.Text)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(outPath, []byte(b.String()), 0644); err != nil {
		return err
	}
	fmt.Printf("Disassembled %d instructions to %s\n", len(w.Instructions), outPath)
	return nil
}

func runExport(codec *scriptfmt.TextCodec, inPath, outPath string) error {
	buf, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	w, err := scriptfmt.WalkScript(buf, codec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, []byte(scriptfmt.ExportText(w)), 0644); err != nil {
		return err
	}
	fmt.Printf("Exported %d strings to %s\n", len(w.Strings), outPath)
	return nil
}

func runImport(codec *scriptfmt.TextCodec, scriptPath, textPath, outPath string, maxLineLen int, dryRun bool) error {
	buf, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	text, err := os.ReadFile(textPath)
	if err != nil {
		return err
	}
	translations, err := scriptfmt.ParseTranslations(string(text))
	if err != nil {
		return err
	}
	patched, result, err := scriptfmt.Import(buf, codec, translations, maxLineLen)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Printf("Dry run for %s: %d translations would apply, size %d -> %d (%+d bytes)\n",
			scriptPath, result.Applied, len(buf), len(patched), len(patched)-len(buf))
		for _, w := range result.Warnings {
			fmt.Println("warning:", w)
		}
		return nil
	}

	// Write atomically: to a sibling temp path, then rename over the
	// destination, per spec.md §4.5 step 7.
	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, patched, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return err
	}

	fmt.Printf("Applied %d translations to %s\n", result.Applied, outPath)
	for _, w := range result.Warnings {
		fmt.Println("warning:", w)
	}
	return nil
}

func runBatchExport(codec *scriptfmt.TextCodec, dir, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		inPath := filepath.Join(dir, e.Name())
		outPath := filepath.Join(outDir, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))+".txt")
		if err := runExport(codec, inPath, outPath); err != nil {
			fmt.Printf("skipping %s: %v\n", inPath, err)
			continue
		}
		count++
	}
	fmt.Printf("Batch-exported %d scripts\n", count)
	return nil
}

func runBatchImport(codec *scriptfmt.TextCodec, scriptDir, textDir, outDir string, maxLineLen int, dryRun bool) error {
	if !dryRun {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}
	}
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return err
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		textPath := filepath.Join(textDir, base+".txt")
		if _, err := os.Stat(textPath); err != nil {
			continue
		}
		scriptPath := filepath.Join(scriptDir, e.Name())
		outPath := filepath.Join(outDir, e.Name())
		if err := runImport(codec, scriptPath, textPath, outPath, maxLineLen, dryRun); err != nil {
			fmt.Printf("skipping %s: %v\n", scriptPath, err)
			continue
		}
		count++
	}
	if dryRun {
		fmt.Printf("Batch dry run: %d scripts checked\n", count)
		return nil
	}
	fmt.Printf("Batch-imported %d scripts\n", count)
	return nil
}
