// Package elfimage loads an ELF64 object into a flat byte image plus the
// address->symbol and address->relocation-offset maps the decoder core
// consumes, with every address expressed as a file offset rather than a
// virtual address.
//
// Grounded on original_source/src/elfdisas.h's ELFDisAssembler: section
// headers, .symtab/.strtab resolution and PLT stub naming via .rela.plt /
// .dynsym / .plt.sec are all translated from that struct's _parse* methods,
// reading through the standard library's debug/elf instead of the
// original's raw struct copies out of a byte vector.
package elfimage

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
)

// PLTSecEntrySize is the fixed stub size .plt.sec entries are laid out at,
// matching the original's PLT_SEC_ENTRY_SIZE.
const PLTSecEntrySize = 16

// PrintableSections lists the sections the listing package banners, in the
// order original_source/src/elfdisas.h's PRINTABLE_SECTIONS checks them.
var PrintableSections = []string{".plt.got", ".plt.sec", ".text", ".init", ".fini"}

// SectionLabelPostfix is the symbol-header suffix appended for a given
// section name, mirroring SECTION_LABEL_POSTFIX.
var SectionLabelPostfix = map[string]string{
	".plt.got": "@plt",
	".plt.sec": "@plt",
	".text":    "",
	".init":    "",
	".fini":    "",
}

// Section records the file-offset span of one named ELF section.
type Section struct {
	Name   string
	Offset uint64
	Size   uint64
}

// Contains reports whether the file offset addr falls within this section.
func (s Section) Contains(addr uint64) bool {
	return addr >= s.Offset && addr < s.Offset+s.Size
}

// Image is a loaded ELF64 object: the raw bytes plus the maps the core
// decoder and the listing package need, all keyed by file offset.
type Image struct {
	Bytes []byte

	Sections map[string]Section

	// Addr2Symbol binds a file offset to the symbol name found to start
	// there, combining every named .symtab entry and
	// .plt.sec stub entries (resolved through .rela.plt/.dynsym).
	Addr2Symbol map[uint64]string

	// Addr2RelocOffset binds a .plt.sec stub's file offset to the
	// r_offset of the .rela.plt entry that named it.
	Addr2RelocOffset map[uint64]uint64
}

// Load reads path as an ELF64 object and builds an Image over it.
func Load(path string) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elfimage: read %s: %w", path, err)
	}
	return LoadBytes(raw)
}

// LoadBytes builds an Image from an in-memory ELF64 object, keeping the raw
// bytes as the disassembler's image (core spec §6: the decoder operates
// over the raw file bytes, not a relocated in-memory layout).
func LoadBytes(raw []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("elfimage: parse ELF: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("elfimage: %s is not a 64-bit ELF object", elfClassName(f.Class))
	}

	img := &Image{
		Bytes:            raw,
		Sections:         make(map[string]Section),
		Addr2Symbol:      make(map[uint64]string),
		Addr2RelocOffset: make(map[uint64]uint64),
	}

	for _, sh := range f.Sections {
		img.Sections[sh.Name] = Section{Name: sh.Name, Offset: sh.Offset, Size: sh.Size}
	}

	textOffset, haveText := img.sectionOffset(".text")
	if haveText {
		img.parseSymtab(f, textOffset)
	}
	img.parsePLT(f)

	return img, nil
}

func (img *Image) sectionOffset(name string) (uint64, bool) {
	sh, ok := img.Sections[name]
	if !ok {
		return 0, false
	}
	return sh.Offset, true
}

// parseSymtab binds every named .symtab symbol to .text's file offset plus
// its st_value, per _parseSymTabSection.
func (img *Image) parseSymtab(f *elf.File, textOffset uint64) {
	syms, err := f.Symbols()
	if err != nil {
		return
	}
	for _, sym := range syms {
		if sym.Name == "" {
			continue
		}
		img.Addr2Symbol[textOffset+sym.Value] = sym.Name
	}
}

// parsePLT resolves .plt.sec stub addresses to names by walking .rela.plt,
// looking each relocation's symbol index up in .dynsym, and laying the
// resolved names out across .plt.sec at a fixed per-entry stride, per
// _parseDynSymSection / _parsePltSecSection.
func (img *Image) parsePLT(f *elf.File) {
	pltSec, ok := img.Sections[".plt.sec"]
	if !ok {
		return
	}

	relaSec := f.Section(".rela.plt")
	if relaSec == nil {
		return
	}
	relas, err := relaSec.Data()
	if err != nil {
		return
	}

	dynsyms, err := f.DynamicSymbols()
	if err != nil {
		return
	}

	const relaEntSize = 24 // uint64 r_offset + uint64 r_info + int64 r_addend
	for idx := 0; idx*relaEntSize+relaEntSize <= len(relas); idx++ {
		entry := relas[idx*relaEntSize : idx*relaEntSize+relaEntSize]
		rOffset := leUint64(entry[0:8])
		rInfo := leUint64(entry[8:16])
		symIdx := rInfo >> 32

		if symIdx == 0 || int(symIdx) > len(dynsyms) {
			continue
		}
		sym := dynsyms[symIdx-1]
		if sym.Name == "" {
			continue
		}

		stubAddr := pltSec.Offset + uint64(idx)*PLTSecEntrySize
		img.Addr2Symbol[stubAddr] = sym.Name
		img.Addr2RelocOffset[stubAddr] = rOffset
	}
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

func elfClassName(c elf.Class) string {
	if c == elf.ELFCLASS32 {
		return "a 32-bit"
	}
	return c.String()
}
