// driver_test.go - exercises both drivers over small hand-assembled
// byte images, in the teacher's plain-testing style.

package disasm

import "testing"

func TestLinearSweepAdvancesPastError(t *testing.T) {
	// 90 (nop) 0F FF (undefined two-byte opcode) 90 (nop)
	image := []byte{0x90, 0x0F, 0xFF, 0x90}
	s := NewState(image, 0x1000, nil, nil)
	RunLinearSweep(s, 0x1000, 0x1003, nil)

	results := s.Results()
	if results[Span{0x1000, 0x1001}] != "nop" {
		t.Fatalf("missing nop at 0x1000: %v", results)
	}
	if results[Span{0x1003, 0x1004}] != "nop" {
		t.Fatalf("missing nop at 0x1003: %v", results)
	}
	if got := results[Span{0x1001, 0x1003}]; got != UnknownInstruction {
		t.Fatalf("got %q for the error span, want %q", got, UnknownInstruction)
	}
}

func TestLinearSweepNeverRevisitsDecodedBytes(t *testing.T) {
	// B8 90 90 90 90 : mov eax, 0x90909090; the immediate's bytes are nop
	// opcodes but are never decoded as instructions of their own.
	image := []byte{0xB8, 0x90, 0x90, 0x90, 0x90}
	s := NewState(image, 0x2000, nil, nil)
	RunLinearSweep(s, 0x2000, 0x2004, nil)

	if len(s.Results()) != 1 {
		t.Fatalf("got %d spans, want 1", len(s.Results()))
	}
}

func TestRecursiveDescentFollowsFallthrough(t *testing.T) {
	// 90 90 C3 : nop; nop; ret
	image := []byte{0x90, 0x90, 0xC3}
	s := NewState(image, 0x3000, nil, nil)
	RunRecursiveDescent(s, 0x3000, 0x3002, nil)

	results := s.Results()
	if len(results) != 3 {
		t.Fatalf("got %d spans, want 3: %v", len(results), results)
	}
}

func TestRecursiveDescentFollowsBranchTargetAndPushesFallthrough(t *testing.T) {
	// 0x3000: 74 02       je +2   -> fallthrough 0x3002, target 0x3004
	// 0x3002: 90          nop (only reached via fallthrough)
	// 0x3003: C3          ret
	// 0x3004: C3          ret (branch target)
	image := []byte{0x74, 0x02, 0x90, 0xC3, 0xC3}
	s := NewState(image, 0x3000, nil, nil)
	RunRecursiveDescent(s, 0x3000, 0x3004, nil)

	results := s.Results()
	if results[Span{0x3000, 0x3002}] == "" {
		t.Fatalf("missing the je instruction: %v", results)
	}
	if results[Span{0x3002, 0x3003}] != "nop" {
		t.Fatalf("missing the fallthrough nop: %v", results)
	}
	if results[Span{0x3004, 0x3005}] != "ret" {
		t.Fatalf("missing the branch-target ret: %v", results)
	}
}

func TestRecursiveDescentStopsAtRet(t *testing.T) {
	// C3 90 : ret; nop (unreachable, never decoded)
	image := []byte{0xC3, 0x90}
	s := NewState(image, 0x4000, nil, nil)
	RunRecursiveDescent(s, 0x4000, 0x4001, nil)

	results := s.Results()
	if len(results) != 1 {
		t.Fatalf("got %d spans, want 1 (unreachable code must stay undecoded): %v", len(results), results)
	}
}

func TestSymbolAnnotationOnCallTarget(t *testing.T) {
	// E8 00 00 00 00 : call +0 (targets the byte right after itself)
	image := []byte{0xE8, 0x00, 0x00, 0x00, 0x00}
	symbols := map[uint64]string{0x5005: "target_fn"}
	s := NewState(image, 0x5000, symbols, nil)
	RunLinearSweep(s, 0x5000, 0x5004, nil)

	text := s.Results()[Span{0x5000, 0x5005}]
	want := "call 5005 <target_fn> ; relative offset = 0"
	if text != want {
		t.Fatalf("got %q, want %q", text, want)
	}
}
