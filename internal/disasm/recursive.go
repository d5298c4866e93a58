// recursive.go - the recursive-descent driver from core spec §4.4.2.
//
// Grounded on original_source/src/disassembler.h's
// RecursiveDescentDisAssembler::disas and popAddr: a visited bitmap
// (separate from the state's decoded bitmap), a stack of pending
// fallthrough addresses pushed when a branch forks, and the pop rule
// requiring !decoded && !visited so a popped address is never revisited
// nor re-decoded.

package disasm

import "github.com/nullsector/x64dis/internal/x86"

// RunRecursiveDescent walks [start, end] by following control flow:
// straight-line fallthrough for ordinary instructions, both edges of any
// control-flow instruction with a direct target (call, jmp, jcc, loop:
// fallthrough pushed for later, target followed immediately), plain
// fallthrough for an indirect branch or one whose target is its own
// fallthrough, and a return to the stack on RET or when a decoded span
// would cross end.
func RunRecursiveDescent(s *State, start, end uint64, log Logger) {
	visited := make(map[uint64]bool)
	var stack []uint64

	pop := func() (uint64, bool) {
		for len(stack) > 0 {
			addr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !s.decoded[addr] && !visited[addr] {
				return addr, true
			}
		}
		return 0, false
	}

	curAddr := start
walk:
	for {
		if !s.inBounds(curAddr) {
			next, ok := pop()
			if !ok {
				break walk
			}
			curAddr = next
			continue walk
		}

		inst, err := s.step(curAddr)
		if err != nil {
			if log != nil {
				log.Warnf("%#x: %v", curAddr, err)
			}
			visited[curAddr] = true
			if curAddr+1 <= end && !visited[curAddr+1] {
				curAddr++
				continue walk
			}
			next, ok := pop()
			if !ok {
				break walk
			}
			curAddr = next
			continue walk
		}

		visited[curAddr] = true
		nextAddr := inst.StartAddr + uint64(inst.Length)
		cfAddr, hasCF := inst.BranchTarget()

		switch {
		case inst.Mnemonic == x86.MnRET || nextAddr > end:
			next, ok := pop()
			if !ok {
				break walk
			}
			curAddr = next

		case x86.IsControlFlow(inst.Mnemonic):
			if !hasCF || nextAddr == cfAddr {
				if nextAddr <= end && !visited[nextAddr] {
					curAddr = nextAddr
					continue walk
				}
				next, ok := pop()
				if !ok {
					break walk
				}
				curAddr = next
				continue walk
			}
			if nextAddr <= end && !s.decoded[nextAddr] && !visited[nextAddr] {
				stack = append(stack, nextAddr)
			}
			if cfAddr <= end && !visited[cfAddr] {
				curAddr = cfAddr
			} else {
				next, ok := pop()
				if !ok {
					break walk
				}
				curAddr = next
			}

		default:
			if nextAddr <= end && !visited[nextAddr] {
				curAddr = nextAddr
			} else {
				next, ok := pop()
				if !ok {
					break walk
				}
				curAddr = next
			}
		}
	}
	s.FlushTrailingErrors()
}
