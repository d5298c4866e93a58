// state.go - shared disassembly state: the decoded bitmap, the stored
// instruction/error spans, and the step primitive both drivers call.
//
// Grounded on original_source/src/disassembler.h's DisAssembler struct:
// isSuccessfullyDisAssembled, storeInstruction/storeError and step() are
// kept nearly verbatim in shape, translated from a byte-indexed C++
// vector<bool> into Go maps keyed by address (this tool works over ELF
// file-offset addresses, which need not start at zero or be contiguous).

package disasm

import (
	"fmt"
	"strings"

	"github.com/nullsector/x64dis/internal/x86"
)

// UnknownInstruction is the placeholder text stored for a byte span the
// decoder could not turn into an instruction.
const UnknownInstruction = "UNKNOWN-INSTRUCTION"

// Span is a half-open byte range [Start, End) within the image.
type Span struct {
	Start, End uint64
}

// State accumulates the results of repeated decode steps over one image.
// It is not safe for concurrent use; callers run exactly one driver over
// one State at a time, matching the single-threaded-per-run contract this
// tool upholds throughout.
type State struct {
	image []byte
	base  uint64

	symbols map[uint64]string
	relocs  map[uint64]uint64

	decoded map[uint64]bool
	results map[Span]string
	lengths map[uint64]uint64

	errorRun     []uint64
	MaxTextWidth int
}

// NewState builds a State over image, whose byte at offset 0 corresponds
// to address base. symbols and relocs (both optional, may be nil) carry
// the addr->name and addr->reloc-offset bindings; instruction text uses
// only symbols, and relocs is kept on the State without being read.
func NewState(image []byte, base uint64, symbols map[uint64]string, relocs map[uint64]uint64) *State {
	return &State{
		image:   image,
		base:    base,
		symbols: symbols,
		relocs:  relocs,
		decoded: make(map[uint64]bool),
		results: make(map[Span]string),
		lengths: make(map[uint64]uint64),
	}
}

func (s *State) inBounds(addr uint64) bool {
	return addr >= s.base && addr < s.base+uint64(len(s.image))
}

func (s *State) offset(addr uint64) int {
	return int(addr - s.base)
}

// Results returns the accumulated span->text map, safe to read once a
// driver's run has completed.
func (s *State) Results() map[Span]string {
	return s.results
}

// InstructionLength reports the length recorded for the instruction
// starting at addr, if any.
func (s *State) InstructionLength(addr uint64) (uint64, bool) {
	l, ok := s.lengths[addr]
	return l, ok
}

// storeInstruction records a successfully decoded instruction, skipping
// silently if any byte in its span was already decoded (the same
// silent-skip behavior as the original's storeInstruction).
func (s *State) storeInstruction(inst *x86.DecodedInstruction) {
	start := inst.StartAddr
	next := start + uint64(inst.Length)

	for idx := start; idx < next; idx++ {
		if s.decoded[idx] {
			return
		}
	}
	for idx := start; idx < next; idx++ {
		s.decoded[idx] = true
	}

	s.flushErrorRun()

	text := s.render(inst)
	s.results[Span{start, next}] = text
	s.lengths[start] = uint64(inst.Length)
	if len(text) > s.MaxTextWidth {
		s.MaxTextWidth = len(text)
	}
}

// render splices a bound symbol name into a control-flow instruction's
// rendered text when its resolved branch target is bound, per the
// symbol-binding behavior in core spec §4.5. The decoder already
// composed "<mnemonic> <hex-target> ; relative offset = <decimal>"
// with no symbol; the name goes in right before the " ; relative
// offset" suffix, matching a disassembler that knows nothing about the
// instruction's encoding but can recognize that suffix in the text it
// was handed.
func (s *State) render(inst *x86.DecodedInstruction) string {
	text := inst.Text
	target, ok := inst.BranchTarget()
	if !ok {
		return text
	}
	name, ok := s.symbols[target]
	if !ok {
		return text
	}
	idx := strings.Index(text, " ; relative offset")
	if idx < 0 {
		return fmt.Sprintf("%s <%s>", text, name)
	}
	return text[:idx] + fmt.Sprintf(" <%s>", name) + text[idx:]
}

// storeError marks one byte as undecoded and appends it to the run of
// consecutive error bytes that will be flushed into a single
// UNKNOWN-INSTRUCTION span by the next successful storeInstruction (or by
// FlushTrailingErrors at the end of a run).
func (s *State) storeError(addr uint64) {
	if n := len(s.errorRun); n > 0 && s.errorRun[n-1]+1 != addr {
		s.flushErrorRun()
	}
	s.decoded[addr] = false
	s.errorRun = append(s.errorRun, addr)
}

func (s *State) flushErrorRun() {
	if len(s.errorRun) == 0 {
		return
	}
	start := s.errorRun[0]
	end := start + uint64(len(s.errorRun))
	s.results[Span{start, end}] = UnknownInstruction
	if len(UnknownInstruction) > s.MaxTextWidth {
		s.MaxTextWidth = len(UnknownInstruction)
	}
	s.errorRun = nil
}

// FlushTrailingErrors closes out any error run left open when a driver
// finishes without a subsequent successful decode to trigger the flush.
func (s *State) FlushTrailingErrors() {
	s.flushErrorRun()
}

// step decodes one instruction at addr, recording the result (success or
// error) into the state, and returns it so a driver can make control-flow
// decisions.
func (s *State) step(addr uint64) (*x86.DecodedInstruction, error) {
	inst, err := x86.Decode(s.image, s.base, s.offset(addr))
	if err != nil {
		s.storeError(addr)
		return nil, err
	}
	s.storeInstruction(inst)
	return inst, nil
}
