// registers.go - register name banks, generalized from the teacher's 32-bit
// x86Reg8/16/32 tables (debug_disasm_x86.go) to the full 16-register,
// REX-extended x86-64 set.

package x86

var registers8 = [16]string{
	"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
	"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b",
}

// registers8Legacy is used instead of registers8 when no REX prefix is
// present at all, matching the ah/ch/dh/bh high-byte encodings that only
// exist without REX.
var registers8Legacy = [8]string{
	"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh",
}

var registers16 = [16]string{
	"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
	"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w",
}

var registers32 = [16]string{
	"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
	"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d",
}

var registers64 = [16]string{
	"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
}

var registersXMM = [16]string{
	"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7",
	"xmm8", "xmm9", "xmm10", "xmm11", "xmm12", "xmm13", "xmm14", "xmm15",
}

var registersYMM = [16]string{
	"ymm0", "ymm1", "ymm2", "ymm3", "ymm4", "ymm5", "ymm6", "ymm7",
	"ymm8", "ymm9", "ymm10", "ymm11", "ymm12", "ymm13", "ymm14", "ymm15",
}

var segmentRegisters = [6]string{"es", "cs", "ss", "ds", "fs", "gs"}

// registerName returns the textual register name for the given bit width
// and index (0..15, already adjusted for any REX.R/X/B extension).
func registerName(kind OperandKind, index int, hasREX bool) string {
	switch kind {
	case OpReg8, OpRM8:
		if !hasREX {
			return registers8Legacy[index&7]
		}
		return registers8[index]
	case OpReg16, OpRM16:
		return registers16[index]
	case OpReg32, OpRM32:
		return registers32[index]
	case OpReg64, OpRM64, OpM:
		return registers64[index]
	case OpXMM, OpXM128:
		return registersXMM[index]
	case OpYMM:
		return registersYMM[index]
	default:
		return registers64[index]
	}
}
