// linear.go - the linear-sweep driver from core spec §4.4.1.
//
// Grounded on original_source/src/disassembler.h's
// LinearSweepDisAssembler::disas: step, advance by the decoded length on
// success, advance by one byte and log on failure, until curAddr exceeds
// endAddr.

package disasm

// Logger is the minimal diagnostic sink a driver writes decode failures
// to. *logrus.Logger satisfies this.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// RunLinearSweep walks [start, end] one instruction at a time, always
// advancing strictly forward: instructionLen bytes on success, one byte
// on failure. It never revisits an address and never follows a
// control-flow edge.
func RunLinearSweep(s *State, start, end uint64, log Logger) {
	addr := start
	for addr <= end {
		inst, err := s.step(addr)
		if err != nil {
			if log != nil {
				log.Warnf("%#x: %v", addr, err)
			}
			addr++
			continue
		}
		addr = inst.StartAddr + uint64(inst.Length)
	}
	s.FlushTrailingErrors()
}
