// decoder.go - the instruction decode step sequence from core spec §4.3.
//
// Grounded on the teacher's Disassemble loop (debug_disasm_x86.go), which
// walks prefixes, reads an opcode byte, and dispatches through a switch.
// Here the dispatch target is the table built in opcodes.go; the shape of
// the loop (read prefixes, read opcode, look up, render operands, assemble
// text) is the part kept from the teacher.

package x86

import (
	"fmt"
	"strings"
)

const endbr64Opcode = 0xFA
const endbr32Opcode = 0xFB

// Decode decodes a single instruction starting at data[pos], where data is
// interpreted as beginning at address addr+0 and pos indexes into it (so
// the instruction's own address is addr+uint64(pos)). It returns either a
// DecodedInstruction or a *DecodeError identifying why decoding stopped.
func Decode(data []byte, addr uint64, pos int) (*DecodedInstruction, error) {
	c := newCursor(data, addr, pos)
	startAddr := c.addr()

	var rex REX
	hasREX := false
	var seg SegmentOverride
	var instPrefix InstructionPrefix
	sawP66 := false

	for {
		b, ok := c.peekByte()
		if !ok {
			return nil, newError(ErrTruncated, startAddr, -1)
		}
		switch b {
		case 0xF0:
			instPrefix = IPLock
		case 0xF2:
			instPrefix = IPRepne
		case 0xF3:
			instPrefix = IPRep
		case 0x3E:
			instPrefix = IPNotrack
		case 0x64:
			seg = SegFS
		case 0x65:
			seg = SegGS
		case 0x66:
			sawP66 = true
		case 0x2E, 0x26, 0x36:
			// CS/ES/SS overrides: ignored in 64-bit mode, consumed and dropped.
		default:
			if b >= 0x40 && b <= 0x4F {
				rex = REX{W: b&0x08 != 0, R: b&0x04 != 0, X: b&0x02 != 0, B: b&0x01 != 0}
				hasREX = true
				c.readByte()
				goto prefixesDone
			}
			goto prefixesDone
		}
		c.readByte()
	}

prefixesDone:
	// A REX prefix must immediately precede the opcode; any prefix byte
	// read above the REX check already terminated the loop via goto, so
	// hasREX here reflects exactly that adjacency rule.

	opcodeAddr := c.addr()
	op, err := c.readByte()
	if err != nil {
		return nil, newError(ErrTruncated, startAddr, -1)
	}

	if op == 0x0F {
		if instPrefix == IPRep {
			if b2, ok := c.peekByte(); ok && b2 == 0x1E {
				save := c.pos
				c.readByte()
				if mb, ok2 := c.peekByte(); ok2 && (mb == endbr64Opcode || mb == endbr32Opcode) {
					c.readByte()
					mn := MnENDBR64
					if mb == endbr32Opcode {
						mn = MnENDBR32
					}
					return &DecodedInstruction{
						StartAddr: startAddr,
						Length:    uint(c.consumed()),
						Mnemonic:  mn,
						Text:      mn.String(),
					}, nil
				}
				c.pos = save
			}
		}
		op2, err := c.readByte()
		if err != nil {
			return nil, newError(ErrTruncated, startAddr, -1)
		}
		return c.decodeTwoByte(startAddr, op2, rex, hasREX, seg, instPrefix, sawP66)
	}

	return c.decodeOneByte(startAddr, opcodeAddr, op, rex, hasREX, seg, instPrefix, sawP66)
}

func effectivePrefix(rex REX, hasREX, sawP66 bool) Prefix {
	switch {
	case hasREX && rex.W:
		return PrefixREXW
	case hasREX:
		return PrefixREX
	case sawP66:
		return PrefixP66
	default:
		return PrefixNone
	}
}

func (c *cursor) decodeOneByte(startAddr, opcodeAddr uint64, op byte, rex REX, hasREX bool, seg SegmentOverride, ip InstructionPrefix, sawP66 bool) (*DecodedInstruction, error) {
	entry, ok := oneByteTable[op]
	if !ok {
		return nil, newError(ErrOpcodeLookup, startAddr, int(op))
	}
	return c.render(startAddr, entry, op, effectivePrefix(rex, hasREX, sawP66), rex, hasREX, seg, ip)
}

func (c *cursor) decodeTwoByte(startAddr uint64, op byte, rex REX, hasREX bool, seg SegmentOverride, ip InstructionPrefix, sawP66 bool) (*DecodedInstruction, error) {
	entry, ok := twoByteTable[op]
	if !ok {
		return nil, newError(ErrOpcodeLookup, startAddr, 0x0F00|int(op))
	}
	return c.render(startAddr, entry, op, effectivePrefix(rex, hasREX, sawP66), rex, hasREX, seg, ip)
}

// render consumes whatever bytes the entry's encoding form and operand
// list require, renders operand text and assembles the final mnemonic
// text, honoring the prefix-qualified text for LOCK/BND/REP/NOTRACK per
// core spec §4.3.
func (c *cursor) render(startAddr uint64, entry opcodeEntry, op byte, prefix Prefix, rex REX, hasREX bool, seg SegmentOverride, ip InstructionPrefix) (*DecodedInstruction, error) {
	mn := entry.mnemonic
	var mm modRM
	haveModRM := entry.form.hasModRM()

	if haveModRM {
		mb, err := c.readByte()
		if err != nil {
			return nil, newError(ErrTruncated, startAddr, int(op))
		}
		mm = parseModRM(mb)
		if entry.regOp {
			resolved, okResolve := entry.resolve(mm.reg)
			if !okResolve {
				return nil, newError(ErrOperandLookup, startAddr, int(op))
			}
			mn = resolved
		}
	}

	// Group 3's reg=0/1 encodings (0xF6/0xF7) resolve to TEST, the one
	// group-3 member that carries an immediate on top of its shared
	// r/m operand; every other group-3 mnemonic (NOT/NEG/MUL/IMUL/DIV/
	// IDIV) takes only the r/m operand the table already lists.
	operandKinds := entry.operands
	if mn == MnTEST && (op == 0xF6 || op == 0xF7) {
		immKind := OpImm8
		if op == 0xF7 {
			immKind = OpImmz
		}
		operandKinds = append(append([]OperandKind{}, entry.operands...), immKind)
	}

	var rendered []string
	var condIdx = -1
	if mn == MnJCC || mn == MnSETCC {
		condIdx = int(op & 0x0F)
	}
	var relTarget int64
	haveRelTarget := false

	for _, kind := range operandKinds {
		switch {
		case kind == OpOne:
			rendered = append(rendered, "1")
		case kind == OpCL:
			rendered = append(rendered, "cl")
		case kind == OpRegv:
			idx := int(mm.reg)
			if rex.R {
				idx += 8
			}
			width := widthForReg(prefix)
			if entry.form == EncO || entry.form == EncOI {
				idx = int(op & 7)
				if rex.B {
					idx += 8
				}
				if entry.form == EncO && width == OpReg16 {
					// BSWAP has no 16-bit form; the encoding is reserved.
					width = OpReg32
				}
			}
			rendered = append(rendered, registerName(width, idx, hasREX))
		case kind == OpReg8 || kind == OpReg16 || kind == OpReg32 || kind == OpReg64:
			idx := int(mm.reg)
			if rex.R {
				idx += 8
			}
			if entry.form == EncO || entry.form == EncOI {
				idx = int(op & 7)
				if rex.B {
					idx += 8
				}
			}
			rendered = append(rendered, registerName(kind, idx, hasREX))
		case kind == OpXMM || kind == OpYMM:
			idx := int(mm.reg)
			if rex.R {
				idx += 8
			}
			rendered = append(rendered, registerName(kind, idx, hasREX))
		case kind == OpRMv:
			rmWidth := widthForRM(prefix)
			if op == 0xFF && (mn == MnCALL || mn == MnJMP || mn == MnPUSH) {
				// near CALL/JMP/PUSH r/m defaults to 64-bit in long mode
				// regardless of REX.W or the 0x66 prefix.
				rmWidth = OpRM64
			}
			s, err := c.decodeRM(mm, rmWidth, rex, hasREX, seg)
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, s)
		case kind == OpRM8 || kind == OpRM16 || kind == OpRM32 || kind == OpRM64 ||
			kind == OpM || kind == OpXM128:
			s, err := c.decodeRM(mm, kind, rex, hasREX, seg)
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, s)
		case isImmediateKind(kind):
			v, err := c.readImmediate(kind)
			if err != nil {
				return nil, err
			}
			if entry.form == EncD {
				switch kind {
				case OpImm8:
					relTarget = int64(int8(v))
				case OpImm32:
					relTarget = int64(int32(v))
				}
				haveRelTarget = true
			}
			rendered = append(rendered, signedImmText(kind, v))
		case kind == OpImmz:
			width := OpImm32
			switch {
			case mn == MnMOV && entry.form == EncOI && prefix == PrefixREXW:
				width = OpImm64
			case prefix == PrefixP66:
				width = OpImm16
			}
			v, err := c.readImmediate(width)
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, signedImmText(width, v))
		default:
			if txt, fixed := fixedRegisterText(kind); fixed {
				rendered = append(rendered, txt)
			}
		}
	}

	length := uint(c.consumed())
	text := mn.String()
	if mn == MnJCC {
		text = "j" + jccSuffix[condIdx]
	} else if mn == MnSETCC {
		text = "set" + condSuffix[condIdx]
	}

	switch ip {
	case IPLock:
		text = "lock " + text
	case IPRepne:
		if IsControlFlow(mn) {
			text = "bnd " + text
		} else {
			text = "repne " + text
		}
	case IPRep:
		text = "rep " + text
	case IPNotrack:
		text = "notrack " + text
	}

	// A control-flow mnemonic carrying its one relative-offset immediate
	// is rendered as the absolute target plus the signed offset that
	// produced it, not as the raw immediate text: "<mnemonic> <hex
	// target> ; relative offset = <decimal>". Every other instruction
	// just gets its operands space-joined after the mnemonic.
	if IsControlFlow(mn) && haveRelTarget {
		target := startAddr + uint64(length) + uint64(relTarget)
		text = fmt.Sprintf("%s %x ; relative offset = %d", text, target, relTarget)
	} else if len(rendered) > 0 {
		text = text + "  " + strings.Join(rendered, " ")
	}

	inst := &DecodedInstruction{
		StartAddr: startAddr,
		Length:    length,
		Mnemonic:  mn,
		Text:      text,
	}
	if haveRelTarget {
		inst.NextOffset = relTarget
		inst.HasNextOffset = true
	}
	return inst, nil
}

func (c *cursor) readImmediate(kind OperandKind) (uint64, error) {
	switch kind {
	case OpImm8:
		v, err := c.readByte()
		return uint64(v), err
	case OpImm16:
		v, err := c.readUint16()
		return uint64(v), err
	case OpImm32:
		v, err := c.readUint32()
		return uint64(v), err
	case OpImm64:
		return c.readUint64()
	default:
		return 0, newError(ErrOperandLookup, c.addr(), -1)
	}
}

