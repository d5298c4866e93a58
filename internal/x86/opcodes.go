// opcodes.go - the OP_LOOKUP / OPERAND_LOOKUP table from core spec §4.2.
//
// The teacher's debug_disasm_x86.go answers "what is this opcode" with one
// enormous switch statement walked at decode time. Here the same
// information is data: a table built once at package init and probed by
// the decoder, which keeps the decode step sequence itself uniform across
// every mnemonic instead of growing a case per instruction.

package x86

// aluMnemonics is the repeating eight-instruction family that occupies
// 0x00-0x3D in groups of eight, one group per mnemonic.
var aluMnemonics = [8]Mnemonic{MnADD, MnOR, MnADC, MnSBB, MnAND, MnSUB, MnXOR, MnCMP}

// shiftMnemonics is the group-2 family selected by ModR/M.reg for the
// 0xC0/0xC1/0xD0/0xD1/0xD2/0xD3 shift/rotate opcodes.
var shiftMnemonics = [8]Mnemonic{MnROL, MnROR, MnRCL, MnRCR, MnSHL, MnSHR, MnSAL, MnSAR}

// group1Mnemonics reuses aluMnemonics for 0x80/0x81/0x83's immediate forms.
var group1Mnemonics = aluMnemonics

// group3Mnemonics is the unary family selected by ModR/M.reg for 0xF6/0xF7.
var group3Mnemonics = [8]Mnemonic{MnTEST, MnTEST, MnNOT, MnNEG, MnMUL, MnIMUL, MnDIV, MnIDIV}

var oneByteTable = map[byte]opcodeEntry{}
var twoByteTable = map[byte]opcodeEntry{}

func resolveGroup1(reg byte) (Mnemonic, bool) { return group1(reg), true }
func resolveGroup2(reg byte) (Mnemonic, bool) { return group2(reg), true }
func resolveGroup3(reg byte) (Mnemonic, bool) { return group3(reg), true }
func resolveGroup4(reg byte) (Mnemonic, bool) { return group4(reg), true }
func resolveGroup5(reg byte) (Mnemonic, bool) { return group5(reg), true }

// group5Mnemonics backs 0xFF, selected by ModR/M.reg.
var group5Mnemonics = [8]Mnemonic{MnINC, MnDEC, MnCALL, MnCALL, MnJMP, MnJMP, MnPUSH, MnUNKNOWN}

// group4Mnemonics backs 0xFE, selected by ModR/M.reg.
var group4Mnemonics = [2]Mnemonic{MnINC, MnDEC}

func init() {
	for i, mn := range aluMnemonics {
		base := byte(i * 8)
		oneByteTable[base+0] = opcodeEntry{mn, EncMR, []OperandKind{OpRM8, OpReg8}, false, nil}
		oneByteTable[base+1] = opcodeEntry{mn, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
		oneByteTable[base+2] = opcodeEntry{mn, EncRM, []OperandKind{OpReg8, OpRM8}, false, nil}
		oneByteTable[base+3] = opcodeEntry{mn, EncRM, []OperandKind{OpRegv, OpRMv}, false, nil}
		oneByteTable[base+4] = opcodeEntry{mn, EncI, []OperandKind{OpAL, OpImm8}, false, nil}
		oneByteTable[base+5] = opcodeEntry{mn, EncI, []OperandKind{OpEAX, OpImmz}, false, nil}
	}

	for i := byte(0); i < 8; i++ {
		oneByteTable[0x50+i] = opcodeEntry{MnPUSH, EncO, []OperandKind{OpReg64}, false, nil}
		oneByteTable[0x58+i] = opcodeEntry{MnPOP, EncO, []OperandKind{OpReg64}, false, nil}
		oneByteTable[0xB0+i] = opcodeEntry{MnMOV, EncOI, []OperandKind{OpReg8, OpImm8}, false, nil}
		oneByteTable[0xB8+i] = opcodeEntry{MnMOV, EncOI, []OperandKind{OpRegv, OpImmz}, false, nil}
	}
	for i := byte(0); i < 16; i++ {
		oneByteTable[0x70+i] = opcodeEntry{MnJCC, EncD, []OperandKind{OpImm8}, false, nil}
		twoByteTable[0x80+i] = opcodeEntry{MnJCC, EncD, []OperandKind{OpImm32}, false, nil}
		twoByteTable[0x90+i] = opcodeEntry{MnSETCC, EncM, []OperandKind{OpRM8}, false, nil}
	}

	oneByteTable[0x68] = opcodeEntry{MnPUSH, EncI, []OperandKind{OpImmz}, false, nil}
	oneByteTable[0x6A] = opcodeEntry{MnPUSH, EncI, []OperandKind{OpImm8}, false, nil}
	oneByteTable[0x69] = opcodeEntry{MnIMUL, EncRMI, []OperandKind{OpRegv, OpRMv, OpImmz}, false, nil}
	oneByteTable[0x6B] = opcodeEntry{MnIMUL, EncRMI, []OperandKind{OpRegv, OpRMv, OpImm8}, false, nil}

	oneByteTable[0x84] = opcodeEntry{MnTEST, EncMR, []OperandKind{OpRM8, OpReg8}, false, nil}
	oneByteTable[0x85] = opcodeEntry{MnTEST, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
	oneByteTable[0x88] = opcodeEntry{MnMOV, EncMR, []OperandKind{OpRM8, OpReg8}, false, nil}
	oneByteTable[0x89] = opcodeEntry{MnMOV, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
	oneByteTable[0x8A] = opcodeEntry{MnMOV, EncRM, []OperandKind{OpReg8, OpRM8}, false, nil}
	oneByteTable[0x8B] = opcodeEntry{MnMOV, EncRM, []OperandKind{OpRegv, OpRMv}, false, nil}
	oneByteTable[0x8D] = opcodeEntry{MnLEA, EncRM, []OperandKind{OpRegv, OpM}, false, nil}

	oneByteTable[0x90] = opcodeEntry{MnNOP, EncNP, nil, false, nil}
	oneByteTable[0x98] = opcodeEntry{MnCWDE, EncNP, nil, false, nil}
	oneByteTable[0x99] = opcodeEntry{MnCDQ, EncNP, nil, false, nil}
	oneByteTable[0x9C] = opcodeEntry{MnPUSHF, EncNP, nil, false, nil}
	oneByteTable[0x9D] = opcodeEntry{MnPOPF, EncNP, nil, false, nil}
	oneByteTable[0x9E] = opcodeEntry{MnSAHF, EncNP, nil, false, nil}
	oneByteTable[0x9F] = opcodeEntry{MnLAHF, EncNP, nil, false, nil}

	oneByteTable[0xA4] = opcodeEntry{MnMOVSB, EncNP, nil, false, nil}
	oneByteTable[0xA5] = opcodeEntry{MnMOVSD, EncNP, nil, false, nil}
	oneByteTable[0xA8] = opcodeEntry{MnTEST, EncI, []OperandKind{OpAL, OpImm8}, false, nil}
	oneByteTable[0xA9] = opcodeEntry{MnTEST, EncI, []OperandKind{OpEAX, OpImmz}, false, nil}
	oneByteTable[0xAA] = opcodeEntry{MnSTOSB, EncNP, nil, false, nil}
	oneByteTable[0xAB] = opcodeEntry{MnSTOSD, EncNP, nil, false, nil}
	oneByteTable[0xAC] = opcodeEntry{MnLODSB, EncNP, nil, false, nil}
	oneByteTable[0xAE] = opcodeEntry{MnSCASB, EncNP, nil, false, nil}

	oneByteTable[0xC2] = opcodeEntry{MnRET, EncI, []OperandKind{OpImm16}, false, nil}
	oneByteTable[0xC3] = opcodeEntry{MnRET, EncNP, nil, false, nil}
	oneByteTable[0xC6] = opcodeEntry{MnMOV, EncMI, []OperandKind{OpRM8, OpImm8}, true, group11}
	oneByteTable[0xC7] = opcodeEntry{MnMOV, EncMI, []OperandKind{OpRMv, OpImmz}, true, group11}
	oneByteTable[0xC9] = opcodeEntry{MnLEAVE, EncNP, nil, false, nil}
	oneByteTable[0xCC] = opcodeEntry{MnINT3, EncNP, nil, false, nil}

	oneByteTable[0xD0] = opcodeEntry{MnUNKNOWN, EncM1, []OperandKind{OpRM8, OpOne}, true, resolveGroup2}
	oneByteTable[0xD1] = opcodeEntry{MnUNKNOWN, EncM1, []OperandKind{OpRMv, OpOne}, true, resolveGroup2}
	oneByteTable[0xD2] = opcodeEntry{MnUNKNOWN, EncMC, []OperandKind{OpRM8, OpCL}, true, resolveGroup2}
	oneByteTable[0xD3] = opcodeEntry{MnUNKNOWN, EncMC, []OperandKind{OpRMv, OpCL}, true, resolveGroup2}
	oneByteTable[0xC0] = opcodeEntry{MnUNKNOWN, EncMI, []OperandKind{OpRM8, OpImm8}, true, resolveGroup2}
	oneByteTable[0xC1] = opcodeEntry{MnUNKNOWN, EncMI, []OperandKind{OpRMv, OpImm8}, true, resolveGroup2}

	oneByteTable[0x80] = opcodeEntry{MnUNKNOWN, EncMI, []OperandKind{OpRM8, OpImm8}, true, resolveGroup1}
	oneByteTable[0x81] = opcodeEntry{MnUNKNOWN, EncMI, []OperandKind{OpRMv, OpImmz}, true, resolveGroup1}
	oneByteTable[0x83] = opcodeEntry{MnUNKNOWN, EncMI, []OperandKind{OpRMv, OpImm8}, true, resolveGroup1}

	oneByteTable[0xE8] = opcodeEntry{MnCALL, EncD, []OperandKind{OpImm32}, false, nil}
	oneByteTable[0xE9] = opcodeEntry{MnJMP, EncD, []OperandKind{OpImm32}, false, nil}
	oneByteTable[0xEB] = opcodeEntry{MnJMP, EncD, []OperandKind{OpImm8}, false, nil}

	oneByteTable[0xF4] = opcodeEntry{MnHLT, EncNP, nil, false, nil}
	oneByteTable[0xF5] = opcodeEntry{MnCMC, EncNP, nil, false, nil}
	oneByteTable[0xF6] = opcodeEntry{MnUNKNOWN, EncM, []OperandKind{OpRM8}, true, resolveGroup3}
	oneByteTable[0xF7] = opcodeEntry{MnUNKNOWN, EncM, []OperandKind{OpRMv}, true, resolveGroup3}
	oneByteTable[0xF8] = opcodeEntry{MnCLC, EncNP, nil, false, nil}
	oneByteTable[0xF9] = opcodeEntry{MnSTC, EncNP, nil, false, nil}
	oneByteTable[0xFA] = opcodeEntry{MnCLI, EncNP, nil, false, nil}
	oneByteTable[0xFB] = opcodeEntry{MnSTI, EncNP, nil, false, nil}
	oneByteTable[0xFC] = opcodeEntry{MnCLD, EncNP, nil, false, nil}
	oneByteTable[0xFD] = opcodeEntry{MnSTD, EncNP, nil, false, nil}
	oneByteTable[0xFE] = opcodeEntry{MnUNKNOWN, EncM, []OperandKind{OpRM8}, true, resolveGroup4}
	oneByteTable[0xFF] = opcodeEntry{MnUNKNOWN, EncM, []OperandKind{OpRMv}, true, resolveGroup5}

	twoByteTable[0x05] = opcodeEntry{MnUNKNOWN, EncNP, nil, false, nil} // SYSCALL, not in mnemonic set
	twoByteTable[0x0B] = opcodeEntry{MnUD2, EncNP, nil, false, nil}
	twoByteTable[0x1E] = opcodeEntry{MnNOP, EncM, []OperandKind{OpRMv}, false, nil}
	twoByteTable[0x1F] = opcodeEntry{MnNOP, EncM, []OperandKind{OpRMv}, false, nil}
	twoByteTable[0x28] = opcodeEntry{MnMOVAPS, EncRM, []OperandKind{OpXMM, OpXM128}, false, nil}
	twoByteTable[0x29] = opcodeEntry{MnMOVAPS, EncMR, []OperandKind{OpXM128, OpXMM}, false, nil}
	twoByteTable[0xA2] = opcodeEntry{MnCPUID, EncNP, nil, false, nil}
	twoByteTable[0xA3] = opcodeEntry{MnBT, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
	twoByteTable[0xAB] = opcodeEntry{MnBTS, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
	twoByteTable[0xAF] = opcodeEntry{MnIMUL, EncRM, []OperandKind{OpRegv, OpRMv}, false, nil}
	twoByteTable[0xB3] = opcodeEntry{MnBTR, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
	twoByteTable[0xB6] = opcodeEntry{MnMOVZX, EncRM, []OperandKind{OpRegv, OpRM8}, false, nil}
	twoByteTable[0xB7] = opcodeEntry{MnMOVZX, EncRM, []OperandKind{OpRegv, OpRM16}, false, nil}
	twoByteTable[0xBB] = opcodeEntry{MnBTC, EncMR, []OperandKind{OpRMv, OpRegv}, false, nil}
	twoByteTable[0xBC] = opcodeEntry{MnBSF, EncRM, []OperandKind{OpRegv, OpRMv}, false, nil}
	twoByteTable[0xBD] = opcodeEntry{MnBSR, EncRM, []OperandKind{OpRegv, OpRMv}, false, nil}
	twoByteTable[0xBE] = opcodeEntry{MnMOVSX, EncRM, []OperandKind{OpRegv, OpRM8}, false, nil}
	twoByteTable[0xBF] = opcodeEntry{MnMOVSX, EncRM, []OperandKind{OpRegv, OpRM16}, false, nil}
	for i := byte(0); i < 8; i++ {
		twoByteTable[0xC8+i] = opcodeEntry{MnBSWAP, EncO, []OperandKind{OpRegv}, false, nil}
	}
}

// group1 resolves the ModR/M.reg-selected mnemonic for 0x80/0x81/0x83.
func group1(reg byte) Mnemonic { return group1Mnemonics[reg&7] }

// group2 resolves the shift/rotate mnemonic for 0xC0-0xD3.
func group2(reg byte) Mnemonic { return shiftMnemonics[reg&7] }

// group3 resolves the unary-group mnemonic for 0xF6/0xF7.
func group3(reg byte) Mnemonic { return group3Mnemonics[reg&7] }

// group4 resolves INC/DEC for 0xFE.
func group4(reg byte) Mnemonic { return group4Mnemonics[reg&1] }

// group5 resolves INC/DEC/CALL/JMP/PUSH for 0xFF.
func group5(reg byte) Mnemonic { return group5Mnemonics[reg&7] }

// group11 resolves MOV for 0xC6/0xC7; every other ModR/M.reg value is
// undefined and reported as an OPERAND_LOOKUP failure by the decoder.
func group11(reg byte) (Mnemonic, bool) {
	if reg&7 == 0 {
		return MnMOV, true
	}
	return MnUNKNOWN, false
}
