// types.go - core enumerations and the decoded-instruction record for the x86-64 decoder

package x86

// Prefix is the effective encoding context used to key the opcode tables.
// At most one value is in effect at a time; NONE/P66/REX/REXW form a
// fallback chain from most to least specific (REXW -> REX -> NONE).
type Prefix int

const (
	PrefixNone Prefix = iota
	PrefixP66
	PrefixREX
	PrefixREXW
)

func (p Prefix) String() string {
	switch p {
	case PrefixNone:
		return "NONE"
	case PrefixP66:
		return "P66"
	case PrefixREX:
		return "REX"
	case PrefixREXW:
		return "REXW"
	default:
		return "UNKNOWN"
	}
}

// fallback returns the next prefix to try in the table-lookup fallback
// chain, and false once NONE has already been tried.
func (p Prefix) fallback() (Prefix, bool) {
	switch p {
	case PrefixREXW:
		return PrefixREX, true
	case PrefixREX:
		return PrefixNone, true
	default:
		return PrefixNone, false
	}
}

// REX holds the four booleans extracted from a 0x4_ prefix byte.
type REX struct {
	W, R, X, B bool
}

// InstructionPrefix is a one-byte instruction prefix consumed before the
// opcode: LOCK, REPNE/BND, REP or NOTRACK. It never alters the table key.
type InstructionPrefix byte

const (
	IPNone    InstructionPrefix = 0
	IPLock    InstructionPrefix = 0xF0
	IPRepne   InstructionPrefix = 0xF2
	IPRep     InstructionPrefix = 0xF3
	IPNotrack InstructionPrefix = 0x3E
)

// SegmentOverride is a memory-operand segment prefix.
type SegmentOverride byte

const (
	SegNone SegmentOverride = 0
	SegFS   SegmentOverride = 0x64
	SegGS   SegmentOverride = 0x65
)

func (s SegmentOverride) text() string {
	switch s {
	case SegFS:
		return "fs:"
	case SegGS:
		return "gs:"
	default:
		return ""
	}
}

// OperandKind enumerates the abstract operand categories the opcode tables
// refer to.
type OperandKind int

const (
	OpNone OperandKind = iota
	OpOne
	OpImm8
	OpImm16
	OpImm32
	OpImm64
	OpReg8
	OpReg16
	OpReg32
	OpReg64
	OpRM8
	OpRM16
	OpRM32
	OpRM64
	OpXMM
	OpYMM
	OpXM128
	OpM
	OpM32FP
	OpM64FP
	OpAL
	OpAX
	OpEAX
	OpRAX
	OpCL
	OpDX
	OpST0
	OpSTi
	OpMoffs8
	OpMoffs16
	OpMoffs32
	OpMoffs64
	OpSReg
	OpRMv  // r/m sized by the active prefix (32/16/64)
	OpRegv // ModR/M.reg sized by the active prefix (32/16/64)
	OpImmz // immediate: imm32, imm16 under the P66 prefix, imm64 for MOV r64, imm64 (B8+r under REX.W)
)

// EncodingForm describes how an encoding's operands are sourced.
type EncodingForm int

const (
	EncI EncodingForm = iota
	EncD
	EncM
	EncO
	EncNP
	EncMC
	EncMI
	EncM1
	EncMR
	EncRM
	EncRMI
	EncMRI
	EncMRC
	EncOI
	EncFD
	EncTD
	EncS
	EncA
	EncB
	EncC
)

// hasModRM reports whether this encoding form consumes a ModR/M byte, per
// the core spec's fixed predicate table.
func (f EncodingForm) hasModRM() bool {
	switch f {
	case EncMI, EncM1, EncMR, EncRM, EncRMI, EncMRI, EncMRC, EncM, EncA, EncB, EncMC:
		return true
	default:
		return false
	}
}

// Mnemonic is a closed enumeration of supported instruction names.
type Mnemonic int

const (
	MnUNKNOWN Mnemonic = iota
	MnADD
	MnOR
	MnADC
	MnSBB
	MnAND
	MnSUB
	MnXOR
	MnCMP
	MnMOV
	MnMOVZX
	MnMOVSX
	MnLEA
	MnTEST
	MnXCHG
	MnPUSH
	MnPOP
	MnINC
	MnDEC
	MnNOT
	MnNEG
	MnMUL
	MnIMUL
	MnDIV
	MnIDIV
	MnROL
	MnROR
	MnRCL
	MnRCR
	MnSHL
	MnSHR
	MnSAL
	MnSAR
	MnSHLD
	MnSHRD
	MnNOP
	MnHLT
	MnRET
	MnCALL
	MnJMP
	MnJCC
	MnLOOP
	MnLOOPE
	MnLOOPNE
	MnJCXZ
	MnINT3
	MnCPUID
	MnENDBR64
	MnENDBR32
	MnUD2
	MnCLC
	MnSTC
	MnCLI
	MnSTI
	MnCLD
	MnSTD
	MnCMC
	MnLAHF
	MnSAHF
	MnPUSHF
	MnPOPF
	MnMOVSB
	MnMOVSW
	MnMOVSD
	MnMOVSQ
	MnCMPSB
	MnSTOSB
	MnSTOSD
	MnLODSB
	MnSCASB
	MnCBW
	MnCWDE
	MnCDQE
	MnCWD
	MnCDQ
	MnCQO
	MnBT
	MnBTS
	MnBTR
	MnBTC
	MnBSF
	MnBSR
	MnBSWAP
	MnSETCC
	MnMOVAPS
	MnFADD
	MnFXCH
	MnENTER
	MnLEAVE
)

var mnemonicText = map[Mnemonic]string{
	MnUNKNOWN: "(bad)",
	MnADD:     "add", MnOR: "or", MnADC: "adc", MnSBB: "sbb", MnAND: "and",
	MnSUB: "sub", MnXOR: "xor", MnCMP: "cmp",
	MnMOV: "mov", MnMOVZX: "movzx", MnMOVSX: "movsx", MnLEA: "lea",
	MnTEST: "test", MnXCHG: "xchg",
	MnPUSH: "push", MnPOP: "pop", MnINC: "inc", MnDEC: "dec",
	MnNOT: "not", MnNEG: "neg", MnMUL: "mul", MnIMUL: "imul",
	MnDIV: "div", MnIDIV: "idiv",
	MnROL: "rol", MnROR: "ror", MnRCL: "rcl", MnRCR: "rcr",
	MnSHL: "shl", MnSHR: "shr", MnSAL: "sal", MnSAR: "sar",
	MnSHLD: "shld", MnSHRD: "shrd",
	MnNOP: "nop", MnHLT: "hlt", MnRET: "ret",
	MnCALL: "call", MnJMP: "jmp", MnLOOP: "loop", MnLOOPE: "loope", MnLOOPNE: "loopne",
	MnJCXZ: "jrcxz", MnINT3: "int3", MnCPUID: "cpuid",
	MnENDBR64: "endbr64", MnENDBR32: "endbr32", MnUD2: "ud2",
	MnCLC: "clc", MnSTC: "stc", MnCLI: "cli", MnSTI: "sti",
	MnCLD: "cld", MnSTD: "std", MnCMC: "cmc",
	MnLAHF: "lahf", MnSAHF: "sahf", MnPUSHF: "pushfq", MnPOPF: "popfq",
	MnMOVSB: "movsb", MnMOVSW: "movsw", MnMOVSD: "movsd", MnMOVSQ: "movsq",
	MnCMPSB: "cmpsb", MnSTOSB: "stosb", MnSTOSD: "stosd", MnLODSB: "lodsb", MnSCASB: "scasb",
	MnCBW: "cbw", MnCWDE: "cwde", MnCDQE: "cdqe", MnCWD: "cwd", MnCDQ: "cdq", MnCQO: "cqo",
	MnBT: "bt", MnBTS: "bts", MnBTR: "btr", MnBTC: "btc",
	MnBSF: "bsf", MnBSR: "bsr", MnBSWAP: "bswap", MnSETCC: "set",
	MnMOVAPS: "movaps", MnFADD: "fadd", MnFXCH: "fxch",
	MnENTER: "enter", MnLEAVE: "leave",
}

// String returns the lowercased textual form of the mnemonic.
func (m Mnemonic) String() string {
	if s, ok := mnemonicText[m]; ok {
		return s
	}
	return "(bad)"
}

// condSuffix holds the SETcc condition-code suffixes indexed by the low
// nibble of the SETcc opcode (0x0..0xF).
var condSuffix = [16]string{
	"o", "no", "b", "ae", "e", "ne", "be", "a",
	"s", "ns", "p", "np", "l", "ge", "le", "g",
}

// jccSuffix holds the Jcc condition-code suffixes indexed the same way.
// It agrees with condSuffix everywhere except the zero-flag condition,
// where the Jcc mnemonic is named for the flag it tests (jz/jnz) rather
// than the equality reading SETcc uses (sete/setne).
var jccSuffix = [16]string{
	"o", "no", "b", "ae", "z", "nz", "be", "a",
	"s", "ns", "p", "np", "l", "ge", "le", "g",
}

// IsControlFlow reports whether a mnemonic is a control-flow instruction in
// the sense used by the decoder (relative-target rendering) and the
// recursive-descent driver (branch/fallthrough policy).
func IsControlFlow(m Mnemonic) bool {
	switch m {
	case MnCALL, MnJMP, MnJCC, MnLOOP, MnLOOPE, MnLOOPNE, MnJCXZ:
		return true
	default:
		return false
	}
}

// DecodedInstruction is the immutable product of one decode step.
type DecodedInstruction struct {
	StartAddr uint64
	Length    uint
	Mnemonic  Mnemonic
	Text      string
	// NextOffset is the signed relative displacement carried by a direct
	// control-flow instruction's immediate; meaningful only when
	// HasNextOffset is set (an indirect CALL/JMP through a register or
	// memory operand carries no displacement at all).
	NextOffset    int64
	HasNextOffset bool
}

// BranchTarget returns the absolute address a control-flow instruction
// jumps or calls to, and whether inst actually carries a resolvable one.
func (inst *DecodedInstruction) BranchTarget() (uint64, bool) {
	if !inst.HasNextOffset {
		return 0, false
	}
	return inst.StartAddr + uint64(inst.Length) + uint64(inst.NextOffset), true
}
