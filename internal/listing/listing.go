// Package listing renders a disassembly run's accumulated spans as the
// human-readable output a user sees: a section banner the first time a
// span's address enters one of the printable sections, a symbol header line
// (with a relocation-offset annotation and, for PLT sections, an "@plt"
// suffix) whenever an address is bound to a name, and a table body for the
// address/mnemonic/raw-bytes columns.
//
// Grounded on original_source/src/elfdisas.h's ELFDisAssembler::print: the
// same section-banner-then-symbol-header-then-row structure, rendered here
// through go-pretty's table.Writer instead of raw std::cout, and colourized
// the way rxid09672-sliver-plus's command layer colours its own CLI output.
package listing

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/nullsector/x64dis/internal/disasm"
	"github.com/nullsector/x64dis/internal/elfimage"
)

// NoColor disables ANSI colour in Render, mirroring a CLI's --no-color flag.
var NoColor = false

var (
	addrColor = color.New(color.FgCyan)
	symColor  = color.New(color.FgYellow, color.Bold)
	badColor  = color.New(color.FgRed)
	bannColor = color.New(color.FgGreen, color.Bold)
)

func colorize(c *color.Color, s string) string {
	if NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return c.Sprint(s)
}

// Render writes the disassembly results in img, accumulated in s, to w. It
// walks spans in address order, printing a section banner the first time a
// span enters one of elfimage.PrintableSections and a symbol header line
// whenever the span's start address is bound in img.Addr2Symbol.
func Render(w io.Writer, s *disasm.State, img *elfimage.Image) {
	spans := make([]disasm.Span, 0, len(s.Results()))
	for sp := range s.Results() {
		spans = append(spans, sp)
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })

	bannered := make(map[string]bool)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Address", "Bytes", "Instruction"})

	for _, sp := range spans {
		for _, secName := range elfimage.PrintableSections {
			sec, ok := img.Sections[secName]
			if !ok || bannered[secName] || !sec.Contains(sp.Start) {
				continue
			}
			bannered[secName] = true
			fmt.Fprintf(w, "\n%s\n", colorize(bannColor, fmt.Sprintf("section: %s ----", secName)))
		}

		if name, ok := img.Addr2Symbol[sp.Start]; ok {
			postfix := postfixForAddr(img, sp.Start)
			header := fmt.Sprintf("%#x <%s%s>:", sp.Start, name, postfix)
			if off, ok := img.Addr2RelocOffset[sp.Start]; ok {
				header += fmt.Sprintf(" #%d", off)
			}
			fmt.Fprintf(w, "\n%s\n", colorize(symColor, header))
		}

		text := s.Results()[sp]
		rendered := text
		if text == disasm.UnknownInstruction {
			rendered = colorize(badColor, text)
		}

		tw.AppendRow(table.Row{
			colorize(addrColor, fmt.Sprintf("%#x", sp.Start)),
			hexDump(img.Bytes[sp.Start:sp.End]),
			rendered,
		})
	}

	tw.Render()
}

// postfixForAddr returns the section-specific symbol-name suffix (e.g.
// "@plt" for a .plt.sec/.plt.got stub) for the section addr falls in.
func postfixForAddr(img *elfimage.Image, addr uint64) string {
	for _, name := range elfimage.PrintableSections {
		sec, ok := img.Sections[name]
		if ok && sec.Contains(addr) {
			return elfimage.SectionLabelPostfix[name]
		}
	}
	return ""
}

func hexDump(b []byte) string {
	s := ""
	for i, bb := range b {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%02x", bb)
	}
	return s
}
