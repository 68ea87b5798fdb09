package scriptfmt

import (
	"bytes"
	"testing"
)

func buildScript(codec *TextCodec, texts ...string) []byte {
	var buf []byte
	for _, t := range texts {
		raw, _ := codec.Encode(t)
		buf = append(buf, opDisplayText)
		buf = append(buf, raw...)
		buf = append(buf, 0x00)
	}
	buf = append(buf, opEnd)
	return buf
}

func TestExportThenParseRoundTrip(t *testing.T) {
	codec := mustCodec(t)
	buf := buildScript(codec, "hello", "world")
	w, err := WalkScript(buf, codec)
	if err != nil {
		t.Fatal(err)
	}
	exported := ExportText(w)

	translations, err := ParseTranslations(exported)
	if err != nil {
		t.Fatal(err)
	}
	if len(translations) != 2 {
		t.Fatalf("parsed %d translations, want 2", len(translations))
	}
	for i, tr := range translations {
		if tr.Text != w.Strings[i].Text {
			t.Fatalf("translation %d text = %q, want %q", i, tr.Text, w.Strings[i].Text)
		}
		if tr.Address != w.Strings[i].Address {
			t.Fatalf("translation %d address = %#x, want %#x", i, tr.Address, w.Strings[i].Address)
		}
	}
}

func TestImportSameLengthLeavesJumpsUnchanged(t *testing.T) {
	// spec.md §8: for translations that preserve byte length, import(S, T)
	// equals S with strings replaced and jump words unchanged.
	codec := mustCodec(t)
	buf := []byte{opJumpUnconditional, 0x00, 0x00} // placeholder target patched below
	opcodeAddr := len(buf)
	buf = append(buf, opDisplayText)
	textStart := len(buf)
	raw, _ := codec.Encode("hello")
	buf = append(buf, raw...)
	buf = append(buf, 0x00, opEnd)
	// point the jump at the display text opcode itself
	buf[1] = byte(opcodeAddr)
	buf[2] = byte(opcodeAddr >> 8)

	translations := []Translation{{Address: uint32(textStart), Text: "howdy"}} // same length as "hello"

	out, result, err := Import(buf, codec, translations, 50)
	if err != nil {
		t.Fatal(err)
	}
	if result.Applied != 1 {
		t.Fatalf("applied = %d, want 1", result.Applied)
	}
	if len(out) != len(buf) {
		t.Fatalf("output length changed: %d != %d", len(out), len(buf))
	}
	if !bytes.Equal(out[1:3], buf[1:3]) {
		t.Fatalf("jump word changed for a length-preserving translation")
	}

	w, err := WalkScript(out, codec)
	if err != nil {
		t.Fatal(err)
	}
	if w.Strings[0].Text != "howdy" {
		t.Fatalf("patched text = %q, want %q", w.Strings[0].Text, "howdy")
	}
}

func TestImportGrowingStringShiftsLaterJump(t *testing.T) {
	codec := mustCodec(t)
	// [JMP -> addr of second DISPLAY_TEXT][DISPLAY_TEXT "hi"][DISPLAY_TEXT "yo"][END]
	buf := []byte{opJumpUnconditional, 0, 0}
	firstTextAddr := len(buf) + 1
	buf = append(buf, opDisplayText)
	raw1, _ := codec.Encode("hi")
	buf = append(buf, raw1...)
	buf = append(buf, 0x00)
	secondOpcodeAddr := len(buf)
	buf = append(buf, opDisplayText)
	raw2, _ := codec.Encode("yo")
	buf = append(buf, raw2...)
	buf = append(buf, 0x00, opEnd)
	buf[1] = byte(secondOpcodeAddr)
	buf[2] = byte(secondOpcodeAddr >> 8)

	translations := []Translation{{Address: uint32(firstTextAddr), Text: "hi there"}}

	out, result, err := Import(buf, codec, translations, 50)
	if err != nil {
		t.Fatal(err)
	}
	if result.Applied != 1 {
		t.Fatalf("applied = %d, want 1", result.Applied)
	}

	delta := len("hi there") - len("hi")
	gotTarget := int(out[1]) | int(out[2])<<8
	if gotTarget != secondOpcodeAddr+delta {
		t.Fatalf("jump target = %d, want %d", gotTarget, secondOpcodeAddr+delta)
	}

	w, err := WalkScript(out, codec)
	if err != nil {
		t.Fatal(err)
	}
	if w.Strings[0].Text != "hi there" || w.Strings[1].Text != "yo" {
		t.Fatalf("unexpected decoded strings: %+v", w.Strings)
	}
}

func TestAutoLineBreakSplitsOnSpaceBeforeLimit(t *testing.T) {
	text := "the quick brown fox jumps"
	broken := autoLineBreak(text, 10)
	if want := "the quick￥brown fox￥jumps"; broken != want {
		t.Fatalf("autoLineBreak = %q, want %q", broken, want)
	}
	for _, seg := range splitOnMarker(broken) {
		if len([]rune(seg)) > 10 {
			t.Fatalf("segment %q exceeds max length 10", seg)
		}
	}
}

func TestImportUntranslatedLongStringLeavesJumpsUnchanged(t *testing.T) {
	// spec.md §4.5 step 3: auto-line-break only runs for translations that
	// differ from the original. A translation entry that is byte-identical
	// to the original text must not be treated as changed just because it
	// happens to exceed maxLineLen.
	codec := mustCodec(t)
	buf := []byte{opJumpUnconditional, 0x00, 0x00}
	opcodeAddr := len(buf)
	buf = append(buf, opDisplayText)
	textStart := len(buf)
	original := "the quick brown fox jumps over the lazy dog"
	raw, _ := codec.Encode(original)
	buf = append(buf, raw...)
	buf = append(buf, 0x00, opEnd)
	buf[1] = byte(opcodeAddr)
	buf[2] = byte(opcodeAddr >> 8)

	translations := []Translation{{Address: uint32(textStart), Text: original}}

	out, result, err := Import(buf, codec, translations, 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Applied != 0 {
		t.Fatalf("applied = %d, want 0 (untranslated string should not count as changed)", result.Applied)
	}
	if !bytes.Equal(out, buf) {
		t.Fatalf("output changed for an untranslated string exceeding maxLineLen")
	}
}

func splitOnMarker(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == '￥' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, cur)
	return out
}

func TestOverflowTargetIsReported(t *testing.T) {
	codec := mustCodec(t)
	buf := []byte{opJumpUnconditional, 0xFF, 0xFF, opDisplayText}
	raw, _ := codec.Encode("x")
	buf = append(buf, raw...)
	buf = append(buf, 0x00, opEnd)

	// A translation huge enough to push the (already near-max) jump target past 0xFFFF.
	huge := make([]byte, 70000)
	for i := range huge {
		huge[i] = 'a'
	}
	translations := []Translation{{Address: uint32(4), Text: string(huge)}}

	_, _, err := Import(buf, codec, translations, 1<<20)
	if err == nil {
		t.Fatal("expected an overflow error")
	}
	ce, ok := err.(*CodecError)
	if !ok || ce.Kind != KindOverflowTarget {
		t.Fatalf("expected KindOverflowTarget, got %v", err)
	}
}
