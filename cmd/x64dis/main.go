// Command x64dis is a static disassembler for x86-64 ELF64 objects: it
// loads a file's .text (or another named section), decodes it with either
// a linear sweep or a recursive descent over control flow, and prints the
// result as an address/bytes/mnemonic listing with symbol and PLT
// annotations.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nullsector/x64dis/internal/disasm"
	"github.com/nullsector/x64dis/internal/elfimage"
	"github.com/nullsector/x64dis/internal/listing"
)

var (
	strategyFlag string
	sectionFlag  string
	startFlag    string
	endFlag      string
	noColorFlag  bool
	verboseFlag  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "x64dis <elf-file>",
		Short: "Static disassembler for x86-64 ELF64 objects",
		Args:  cobra.ExactArgs(1),
		RunE:  runDisassemble,
	}

	cmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "linearsweep", "disassembly strategy: linearsweep (ls) or recursivedescent (rd)")
	cmd.Flags().StringVar(&sectionFlag, "section", ".text", "section to disassemble")
	cmd.Flags().StringVar(&startFlag, "start", "", "override start address, file offset in hex (e.g. 0x1000)")
	cmd.Flags().StringVar(&endFlag, "end", "", "override end address, file offset in hex")
	cmd.Flags().BoolVar(&noColorFlag, "no-color", false, "disable ANSI colour in the listing")
	cmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug-level logging")

	return cmd
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	log := logrus.StandardLogger()
	if verboseFlag {
		log.SetLevel(logrus.DebugLevel)
	}

	img, err := elfimage.Load(args[0])
	if err != nil {
		return fmt.Errorf("x64dis: %w", err)
	}

	sec, ok := img.Sections[sectionFlag]
	if !ok {
		return fmt.Errorf("x64dis: section %q not found in %s", sectionFlag, args[0])
	}

	start, end := sec.Offset, sec.Offset+sec.Size-1
	if startFlag != "" {
		v, err := parseHexAddr(startFlag)
		if err != nil {
			return fmt.Errorf("x64dis: --start: %w", err)
		}
		start = v
	}
	if endFlag != "" {
		v, err := parseHexAddr(endFlag)
		if err != nil {
			return fmt.Errorf("x64dis: --end: %w", err)
		}
		end = v
	}

	s := disasm.NewState(img.Bytes, 0, img.Addr2Symbol, img.Addr2RelocOffset)

	switch resolveStrategy(strategyFlag, log) {
	case strategyRecursive:
		disasm.RunRecursiveDescent(s, start, end, log)
	default:
		disasm.RunLinearSweep(s, start, end, log)
	}

	listing.NoColor = noColorFlag
	listing.Render(cmd.OutOrStdout(), s, img)
	return nil
}

type strategy int

const (
	strategyLinear strategy = iota
	strategyRecursive
)

// resolveStrategy accepts the short or long strategy name and falls back to
// a linear sweep with a warning on anything else, matching the original
// ELFDisAssembler::_prepareDA.
func resolveStrategy(name string, log *logrus.Logger) strategy {
	switch name {
	case "ls", "linearsweep":
		return strategyLinear
	case "rd", "recursivedescent":
		return strategyRecursive
	default:
		log.Warnf("%q is not a supported strategy (want linearsweep/ls or recursivedescent/rd); falling back to linearsweep", name)
		return strategyLinear
	}
}

func parseHexAddr(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "0x%x", &v)
	if err != nil {
		_, err = fmt.Sscanf(s, "%x", &v)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid hex address %q", s)
	}
	return v, nil
}
