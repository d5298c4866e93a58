// modrm.go - ModR/M and SIB byte parsing and memory-operand rendering.
//
// Generalizes the teacher's decodeModRM (debug_disasm_x86.go), which only
// ever produced 32-bit addressing with no REX extension, to the full
// x86-64 ModR/M+SIB tree: RIP-relative addressing, REX.R/X/B register
// extension, and disp8/disp32 SIB base=5 special cases.

package x86

import "fmt"

// modRM holds the three ModR/M fields and the derived booleans from core
// spec §3.
type modRM struct {
	mod, reg, rm byte
	hasSIB       bool
	hasDisp8     bool
	hasDisp32    bool
}

func parseModRM(b byte) modRM {
	m := modRM{
		mod: (b >> 6) & 3,
		reg: (b >> 3) & 7,
		rm:  b & 7,
	}
	m.hasSIB = m.mod != 3 && m.rm == 4
	m.hasDisp8 = m.mod == 1
	m.hasDisp32 = m.mod == 2 || (m.mod == 0 && m.rm == 5)
	return m
}

// sib holds the three SIB fields. hasDisp8/hasDisp32 are derived against
// the enclosing ModR/M's mod field per core spec §3.
type sib struct {
	scale, index, base byte
	hasDisp8           bool
	hasDisp32          bool
}

func parseSIB(b byte, mod byte) sib {
	s := sib{
		scale: (b >> 6) & 3,
		index: (b >> 3) & 7,
		base:  b & 7,
	}
	s.hasDisp8 = s.base == 5 && mod == 1
	s.hasDisp32 = s.base == 5 && mod != 1
	return s
}

func scaleFactor(scale byte) int {
	return 1 << scale
}

// signedDisp renders a sign-extended displacement as " + 0xNN" / " - 0xNN".
func signedDisp(v int64) string {
	if v < 0 {
		return fmt.Sprintf(" - 0x%x", -v)
	}
	return fmt.Sprintf(" + 0x%x", v)
}

// decodeRM reads (if required) the SIB byte and any displacement, and
// renders the ModR/M's r/m operand as either a register or a memory
// reference. kind selects the register bank used for mod==3; base and
// index registers of a memory reference are always 64-bit; rex carries the REX.R/X/B extension bits; seg is any active
// segment-override prefix.
func (c *cursor) decodeRM(mm modRM, kind OperandKind, rex REX, hasREX bool, seg SegmentOverride) (string, error) {
	if mm.mod == 3 {
		idx := int(mm.rm)
		if rex.B {
			idx += 8
		}
		return registerName(kind, idx, hasREX), nil
	}

	if mm.rm == 4 {
		sb, err := c.readByte()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		sv := parseSIB(sb, mm.mod)
		return c.decodeSIB(sv, mm.mod, rex, seg)
	}

	if mm.mod == 0 && mm.rm == 5 {
		d, err := c.readInt32()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		return fmt.Sprintf("%s[rip%s]", seg.text(), signedDisp(int64(d))), nil
	}

	baseIdx := int(mm.rm)
	if rex.B {
		baseIdx += 8
	}
	base := registers64[baseIdx]

	switch mm.mod {
	case 0:
		return fmt.Sprintf("%s[%s]", seg.text(), base), nil
	case 1:
		d, err := c.readByte()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		return fmt.Sprintf("%s[%s%s]", seg.text(), base, signedDisp(int64(int8(d)))), nil
	case 2:
		d, err := c.readInt32()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		return fmt.Sprintf("%s[%s%s]", seg.text(), base, signedDisp(int64(d))), nil
	}
	return "", newError(ErrTruncated, c.addr(), -1)
}

// decodeSIB renders the memory operand once the SIB byte has been read,
// following core spec §4.1's SIB-rendering rules.
func (c *cursor) decodeSIB(sv sib, mod byte, rex REX, seg SegmentOverride) (string, error) {
	var base string
	var disp string
	haveBase := true

	switch {
	case sv.base == 5 && mod == 0:
		d, err := c.readInt32()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		haveBase = false
		disp = fmt.Sprintf("0x%08x", uint32(d))
	case sv.base == 5 && mod == 1:
		idx := 5
		if rex.B {
			idx = 13
		}
		base = registers64[idx]
		d, err := c.readByte()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		disp = signedDisp(int64(int8(d)))
	case sv.base == 5 && mod == 2:
		idx := 5
		if rex.B {
			idx = 13
		}
		base = registers64[idx]
		d, err := c.readInt32()
		if err != nil {
			return "", newError(ErrTruncated, c.addr(), -1)
		}
		disp = signedDisp(int64(d))
	default:
		idx := int(sv.base)
		if rex.B {
			idx += 8
		}
		base = registers64[idx]
		switch mod {
		case 1:
			d, err := c.readByte()
			if err != nil {
				return "", newError(ErrTruncated, c.addr(), -1)
			}
			disp = signedDisp(int64(int8(d)))
		case 2:
			d, err := c.readInt32()
			if err != nil {
				return "", newError(ErrTruncated, c.addr(), -1)
			}
			disp = signedDisp(int64(d))
		}
	}

	indexTerm := ""
	if sv.index == 4 && !rex.X {
		// index omitted
	} else {
		idx := int(sv.index)
		if rex.X {
			idx += 8
		}
		indexTerm = fmt.Sprintf("%s*%d", registers64[idx], scaleFactor(sv.scale))
	}

	var inner string
	switch {
	case !haveBase && indexTerm != "":
		inner = indexTerm + " + " + disp
	case !haveBase:
		inner = disp
	case indexTerm != "" && disp != "":
		inner = base + " + " + indexTerm + disp
	case indexTerm != "":
		inner = base + " + " + indexTerm
	default:
		inner = base + disp
	}
	return fmt.Sprintf("%s[%s]", seg.text(), inner), nil
}
