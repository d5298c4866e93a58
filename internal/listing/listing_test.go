// listing_test.go - renders a small hand-built disassembly state and checks
// the banner/header/row structure of the output, in the teacher's plain
// testing style.

package listing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nullsector/x64dis/internal/disasm"
	"github.com/nullsector/x64dis/internal/elfimage"
)

func TestRenderPrintsSectionBannerOnce(t *testing.T) {
	NoColor = true

	image := []byte{0x90, 0x90, 0xC3}
	s := disasm.NewState(image, 0x0, map[uint64]string{0x0: "main"}, nil)
	disasm.RunLinearSweep(s, 0x0, 0x2, nil)

	img := &elfimage.Image{
		Bytes: image,
		Sections: map[string]elfimage.Section{
			".text": {Name: ".text", Offset: 0x0, Size: 3},
		},
		Addr2Symbol:      map[uint64]string{0x0: "main"},
		Addr2RelocOffset: map[uint64]uint64{},
	}

	var buf bytes.Buffer
	Render(&buf, s, img)

	out := buf.String()
	if strings.Count(out, "section: .text ----") != 1 {
		t.Fatalf("want exactly one .text banner, got:\n%s", out)
	}
	if !strings.Contains(out, "<main>") {
		t.Fatalf("want a symbol header for main, got:\n%s", out)
	}
	if !strings.Contains(out, "nop") || !strings.Contains(out, "ret") {
		t.Fatalf("want both decoded instructions in the output, got:\n%s", out)
	}
}

func TestRenderAnnotatesRelocOffset(t *testing.T) {
	NoColor = true

	image := []byte{0xC3}
	s := disasm.NewState(image, 0x0, map[uint64]string{0x0: "puts"}, nil)
	disasm.RunLinearSweep(s, 0x0, 0x0, nil)

	img := &elfimage.Image{
		Bytes: image,
		Sections: map[string]elfimage.Section{
			".plt.sec": {Name: ".plt.sec", Offset: 0x0, Size: 1},
		},
		Addr2Symbol:      map[uint64]string{0x0: "puts"},
		Addr2RelocOffset: map[uint64]uint64{0x0: 48},
	}

	var buf bytes.Buffer
	Render(&buf, s, img)

	out := buf.String()
	if !strings.Contains(out, "#48") {
		t.Fatalf("want the relocation offset annotation, got:\n%s", out)
	}
}
