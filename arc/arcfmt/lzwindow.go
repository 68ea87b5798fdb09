package arcfmt

import "fmt"

// bitReader pulls bits MSB-first from one source byte at a time, matching
// the reservoir the reference decompressors in the teacher toolkit use
// (Tamsoft_PS2_Tool/decompress.go, PS2_Metal_Slug_3D/pklz_decomp.go) —
// generalized here to the two-symbol (literal/back-reference) alphabet
// spec.md §4.2 defines rather than that toolkit's 4KB fixed ring buffer.
type bitReader struct {
	src   []byte
	pos   int
	cur   byte
	nbits int
}

func newBitReader(src []byte) *bitReader { return &bitReader{src: src} }

func (r *bitReader) readBit() (int, error) {
	if r.nbits == 0 {
		if r.pos >= len(r.src) {
			return 0, fmt.Errorf("lzwindow: bit reservoir exhausted")
		}
		r.cur = r.src[r.pos]
		r.pos++
		r.nbits = 8
	}
	r.nbits--
	return int((r.cur >> uint(r.nbits)) & 1), nil
}

func (r *bitReader) readByte() (byte, error) {
	if r.pos >= len(r.src) {
		return 0, fmt.Errorf("lzwindow: byte source exhausted")
	}
	b := r.src[r.pos]
	r.pos++
	return b, nil
}

func (r *bitReader) readU16LE() (uint16, error) {
	lo, err := r.readByte()
	if err != nil {
		return 0, err
	}
	hi, err := r.readByte()
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// Decompress consumes the dictionary-window bitstream described in
// spec.md §4.2 and returns exactly outSize bytes (or an error if the
// stream ends prematurely). A back-reference with distance 0 or a
// distance beyond the bytes written so far degrades to writing zero
// bytes rather than crashing, per the "must not crash" requirement of
// spec.md §8 scenario 2.
func Decompress(src []byte, outSize uint32) ([]byte, error) {
	out := make([]byte, 0, outSize)
	r := newBitReader(src)

	for uint32(len(out)) < outSize {
		bit, err := r.readBit()
		if err != nil {
			return nil, errf(KindTruncated, "lzwindow: %v", err)
		}
		if bit == 0 {
			b, err := r.readByte()
			if err != nil {
				return nil, errf(KindTruncated, "lzwindow: %v", err)
			}
			out = append(out, b)
			continue
		}

		w, err := r.readU16LE()
		if err != nil {
			return nil, errf(KindTruncated, "lzwindow: %v", err)
		}
		length := int(w>>12) + 1
		dist := int(w & 0x0FFF)

		for i := 0; i < length && uint32(len(out)) < outSize; i++ {
			srcIdx := len(out) - dist
			var b byte
			if srcIdx >= 0 && srcIdx < len(out) {
				b = out[srcIdx]
			}
			out = append(out, b)
		}
	}
	return out, nil
}

const (
	minMatch = 1
	maxMatch = 16
	maxDist  = 4095
)

// Compress emits the same literal/back-reference stream Decompress reads
// (see DESIGN.md Open Question OQ-1: the teacher's own packer produces a
// stream its decoder cannot read; this repo implements a conforming
// matcher instead of preserving that bug). The search is a naive greedy
// longest-match over the trailing 4095-byte window, sufficient for a
// codec whose match length caps at 16 bytes.
func Compress(src []byte) ([]byte, error) {
	// A control byte's 8 flag bits are written MSB-first, immediately
	// followed by the raw data bytes (literals or 16-bit back-reference
	// words) for those flags, in the order the flags were set — matching
	// how bitReader interleaves reservoir bits with direct byte reads.
	var out []byte
	var controlByte byte
	var flagCount int
	var pending []byte
	controlAt := -1

	startGroup := func() {
		out = append(out, 0)
		controlAt = len(out) - 1
		controlByte, flagCount = 0, 0
		pending = pending[:0]
	}
	setFlag := func(bit int) {
		controlByte = controlByte<<1 | byte(bit&1)
		flagCount++
	}
	endGroupIfFull := func() {
		if flagCount == 8 {
			out[controlAt] = controlByte
			out = append(out, pending...)
			controlAt = -1
		}
	}
	flush := func() {
		if controlAt >= 0 && flagCount > 0 {
			out[controlAt] = controlByte << uint(8-flagCount)
			out = append(out, pending...)
			controlAt = -1
		}
	}

	pos := 0
	for pos < len(src) {
		if controlAt < 0 {
			startGroup()
		}

		bestLen, bestDist := 0, 0
		windowStart := pos - maxDist
		if windowStart < 0 {
			windowStart = 0
		}
		limit := len(src) - pos
		if limit > maxMatch {
			limit = maxMatch
		}
		for start := windowStart; start < pos; start++ {
			dist := pos - start
			l := 0
			for l < limit && src[pos+l] == src[start+(l%dist)] {
				l++
			}
			if l > bestLen {
				bestLen, bestDist = l, dist
			}
		}

		if bestLen >= 2 {
			setFlag(1)
			w := uint16((bestLen-1)<<12) | uint16(bestDist&0x0FFF)
			pending = append(pending, byte(w), byte(w>>8))
			pos += bestLen
		} else {
			setFlag(0)
			pending = append(pending, src[pos])
			pos++
		}
		endGroupIfFull()
	}
	flush()
	return out, nil
}
