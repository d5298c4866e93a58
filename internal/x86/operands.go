// operands.go - per-encoding operand descriptors and rendering helpers.
//
// The teacher renders operands inline inside its giant opcode switch
// (debug_disasm_x86.go). Here operand shape is data (an []OperandKind per
// opcodeEntry) so the decoder's step sequence can stay generic across all
// ~90 mnemonics instead of special-casing each one.

package x86

import "fmt"

// opcodeEntry is one row of the OP_LOOKUP/OPERAND_LOOKUP table described by
// core spec §4.2: a mnemonic, its encoding form, and the operand kinds in
// the order they are written out.
type opcodeEntry struct {
	mnemonic Mnemonic
	form     EncodingForm
	operands []OperandKind
	regOp    bool                        // true when ModR/M.reg selects the mnemonic via resolve
	resolve  func(reg byte) (Mnemonic, bool)
}

func isImmediateKind(k OperandKind) bool {
	switch k {
	case OpImm8, OpImm16, OpImm32, OpImm64:
		return true
	default:
		return false
	}
}

func isMoffsKind(k OperandKind) bool {
	switch k {
	case OpMoffs8, OpMoffs16, OpMoffs32, OpMoffs64:
		return true
	default:
		return false
	}
}

func immSizeBytes(k OperandKind) int {
	switch k {
	case OpImm8:
		return 1
	case OpImm16:
		return 2
	case OpImm32:
		return 4
	case OpImm64:
		return 8
	default:
		return 0
	}
}

// fixedRegisterText renders operand kinds that always name the same
// register regardless of encoding (AL, AX, EAX, RAX, CL, DX, ST0).
func fixedRegisterText(k OperandKind) (string, bool) {
	switch k {
	case OpAL:
		return "al", true
	case OpAX:
		return "ax", true
	case OpEAX:
		return "eax", true
	case OpRAX:
		return "rax", true
	case OpCL:
		return "cl", true
	case OpDX:
		return "dx", true
	case OpST0:
		return "st0", true
	default:
		return "", false
	}
}

// signedImmText renders an immediate or displacement as a zero-padded,
// width-preserving hex literal: leading zeros are kept rather than
// trimmed, so an imm8 of 5 reads "0x05" and a zero disp32 reads
// "0x00000000".
func signedImmText(k OperandKind, v uint64) string {
	switch k {
	case OpImm8:
		return fmt.Sprintf("0x%02x", uint8(v))
	case OpImm16:
		return fmt.Sprintf("0x%04x", uint16(v))
	case OpImm32:
		return fmt.Sprintf("0x%08x", uint32(v))
	default:
		return fmt.Sprintf("0x%016x", v)
	}
}

// widthForReg maps a ModR/M.reg-selected operand kind through the active
// prefix's effective width, matching spec §4.1's "reg operand sized by
// prefix" rule for MR/RM/MI-style encodings that carry a generic register
// slot.
func widthForReg(p Prefix) OperandKind {
	switch p {
	case PrefixREXW:
		return OpReg64
	case PrefixP66:
		return OpReg16
	default:
		return OpReg32
	}
}

func widthForRM(p Prefix) OperandKind {
	switch p {
	case PrefixREXW:
		return OpRM64
	case PrefixP66:
		return OpRM16
	default:
		return OpRM32
	}
}
