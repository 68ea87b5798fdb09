package scriptfmt

import (
	"fmt"
	"sort"
	"strings"
)

// escapeForExport doubles literal backslashes and turns the engine's
// line-break marker (full-width yen) into a literal "\n", per spec.md
// §4.5's export format.
func escapeForExport(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "￥", `\n`)
	return s
}

// unescapeFromImport reverses escapeForExport, applied in the order
// spec.md §4.5 step 1 specifies: "\\n" first, then "\\\\". Because "\n"
// is replaced first, a literal backslash followed by 'n' in the original
// text comes back as a backslash plus the line-break marker.
func unescapeFromImport(s string) string {
	s = strings.ReplaceAll(s, `\n`, "￥")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// ExportText renders every recorded string as the three-line block
// spec.md §4.5 defines: a ◇ (original) line, a ◆ (translation target)
// line, and a blank separator. Strings are emitted in ascending address
// order, matching the disassembly invariant that string offsets only
// increase.
func ExportText(w *Walk) string {
	refs := append([]StringRef(nil), w.Strings...)
	sort.Slice(refs, func(i, j int) bool { return refs[i].Address < refs[j].Address })

	var b strings.Builder
	for _, ref := range refs {
		text := escapeForExport(ref.Text)
		name := ""
		if ref.Name != "" {
			name = "|" + ref.Name + "|"
		}
		fmt.Fprintf(&b, "◇%08X◇%s%s\n", ref.Address, name, text)
		fmt.Fprintf(&b, "◆%08X◆%s%s\n", ref.Address, name, text)
		b.WriteString("\n")
	}
	return b.String()
}

// Translation is one parsed ◆ line from a translation file.
type Translation struct {
	Address uint32
	Name    string
	Text    string
}

// ParseTranslations implements spec.md §4.5 step 1: only lines containing
// ◆ are kept; each is split on ◆, the middle field is an 8-hex-digit
// address, and a leading "|name|" is stripped from the text before the
// \n/\\ unescape is applied.
func ParseTranslations(data string) ([]Translation, error) {
	var out []Translation
	for _, line := range strings.Split(data, "\n") {
		if !strings.Contains(line, "◆") {
			continue
		}
		parts := strings.SplitN(line, "◆", 3)
		if len(parts) != 3 {
			continue
		}
		var addr uint32
		if _, err := fmt.Sscanf(parts[1], "%08X", &addr); err != nil {
			continue
		}
		text := parts[2]
		name := ""
		if strings.HasPrefix(text, "|") {
			if end := strings.Index(text[1:], "|"); end >= 0 {
				name = text[1 : end+1]
				text = text[end+2:]
			}
		}
		out = append(out, Translation{Address: addr, Name: name, Text: unescapeFromImport(text)})
	}
	return out, nil
}
