// elfimage_test.go - builds minimal ELF64 objects byte-by-byte and checks
// the resulting Image, in the teacher's plain-testing style.

package elfimage

import (
	"encoding/binary"
	"testing"
)

// elfBuilder assembles a minimal ELF64 object one section at a time,
// tracking string-table offsets and section-header entries as it goes so
// the resulting file offsets never have to be hand-computed.
type elfBuilder struct {
	buf      []byte
	shstrtab []byte
	sections []sectionHeader
}

type sectionHeader struct {
	name      string
	shType    uint32
	flags     uint64
	offset    uint64
	size      uint64
	link      uint32
	info      uint32
	entsize   uint64
}

func newELFBuilder() *elfBuilder {
	b := &elfBuilder{shstrtab: []byte{0}}
	b.buf = make([]byte, 64) // room for the file header, filled in at the end
	b.sections = append(b.sections, sectionHeader{name: ""})
	return b
}

// addSection appends data to the file, records a section header for it and
// returns the section's file offset.
func (b *elfBuilder) addSection(name string, shType uint32, data []byte, link, info uint32, entsize uint64) uint64 {
	offset := uint64(len(b.buf))
	b.buf = append(b.buf, data...)
	b.sections = append(b.sections, sectionHeader{
		name: name, shType: shType, offset: offset, size: uint64(len(data)),
		link: link, info: info, entsize: entsize,
	})
	return offset
}

func (b *elfBuilder) nameOffset(name string) uint32 {
	off := uint32(len(b.shstrtab))
	b.shstrtab = append(b.shstrtab, []byte(name)...)
	b.shstrtab = append(b.shstrtab, 0)
	return off
}

// finish writes the .shstrtab section, the section header table and the
// file header, returning the complete image.
func (b *elfBuilder) finish() []byte {
	nameOffsets := make([]uint32, len(b.sections))
	for i, sh := range b.sections[1:] {
		nameOffsets[i+1] = b.nameOffset(sh.name)
	}
	shstrndx := uint16(len(b.sections))
	nameOffsets = append(nameOffsets, b.nameOffset(".shstrtab"))
	b.addSection(".shstrtab", 3 /* SHT_STRTAB */, b.shstrtab, 0, 0, 0)

	shoff := uint64(len(b.buf))
	for i, sh := range b.sections {
		var hdr [64]byte
		binary.LittleEndian.PutUint32(hdr[0:4], nameOffsets[i])
		binary.LittleEndian.PutUint32(hdr[4:8], sh.shType)
		binary.LittleEndian.PutUint64(hdr[8:16], sh.flags)
		binary.LittleEndian.PutUint64(hdr[16:24], 0) // sh_addr
		binary.LittleEndian.PutUint64(hdr[24:32], sh.offset)
		binary.LittleEndian.PutUint64(hdr[32:40], sh.size)
		binary.LittleEndian.PutUint32(hdr[40:44], sh.link)
		binary.LittleEndian.PutUint32(hdr[44:48], sh.info)
		binary.LittleEndian.PutUint64(hdr[48:56], 1) // sh_addralign
		binary.LittleEndian.PutUint64(hdr[56:64], sh.entsize)
		b.buf = append(b.buf, hdr[:]...)
	}

	ident := [16]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}
	copy(b.buf[0:16], ident[:])
	binary.LittleEndian.PutUint16(b.buf[16:18], 2)  // ET_EXEC
	binary.LittleEndian.PutUint16(b.buf[18:20], 62) // EM_X86_64
	binary.LittleEndian.PutUint32(b.buf[20:24], 1)  // e_version
	binary.LittleEndian.PutUint64(b.buf[24:32], 0)  // e_entry
	binary.LittleEndian.PutUint64(b.buf[32:40], 0)  // e_phoff
	binary.LittleEndian.PutUint64(b.buf[40:48], shoff)
	binary.LittleEndian.PutUint32(b.buf[48:52], 0) // e_flags
	binary.LittleEndian.PutUint16(b.buf[52:54], 64)
	binary.LittleEndian.PutUint16(b.buf[54:56], 0)
	binary.LittleEndian.PutUint16(b.buf[56:58], 0)
	binary.LittleEndian.PutUint16(b.buf[58:60], 64)
	binary.LittleEndian.PutUint16(b.buf[60:62], uint16(len(b.sections)))
	binary.LittleEndian.PutUint16(b.buf[62:64], shstrndx)

	return b.buf
}

func sym(nameOff uint32, value uint64, shndx uint16) []byte {
	var e [24]byte
	binary.LittleEndian.PutUint32(e[0:4], nameOff)
	e[4] = 0x11 // STB_GLOBAL<<4 | STT_FUNC
	e[5] = 0
	binary.LittleEndian.PutUint16(e[6:8], shndx)
	binary.LittleEndian.PutUint64(e[8:16], value)
	binary.LittleEndian.PutUint64(e[16:24], 0)
	return e[:]
}

func TestLoadBytesBindsSymtabSymbolToTextFileOffset(t *testing.T) {
	b := newELFBuilder()

	strtab := []byte{0}
	nameOff := uint32(len(strtab))
	strtab = append(strtab, []byte("target_fn\x00")...)

	text := []byte{0x90, 0x90, 0xC3, 0x90, 0x90, 0x90, 0x90, 0x90}
	textOff := b.addSection(".text", 1 /* SHT_PROGBITS */, text, 0, 0, 0)

	symtab := append(sym(0, 0, 0), sym(nameOff, 5, 1)...)
	// .symtab's sh_link must point at .strtab's eventual section index (3:
	// NULL, .text, .symtab, .strtab).
	b.addSection(".symtab", 2 /* SHT_SYMTAB */, symtab, 3, 1, 24)
	b.addSection(".strtab", 3 /* SHT_STRTAB */, strtab, 0, 0, 0)

	raw := b.finish()

	img, err := LoadBytes(raw)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	want := textOff + 5
	if got := img.Addr2Symbol[want]; got != "target_fn" {
		t.Fatalf("Addr2Symbol[%#x] = %q, want %q (symbols: %v)", want, got, "target_fn", img.Addr2Symbol)
	}

	sh, ok := img.Sections[".text"]
	if !ok || sh.Offset != textOff || sh.Size != uint64(len(text)) {
		t.Fatalf("Sections[.text] = %+v, want offset %#x size %d", sh, textOff, len(text))
	}
}

func TestLoadBytesRejectsELF32(t *testing.T) {
	b := newELFBuilder()
	raw := b.finish()
	raw[4] = 1 // EI_CLASS = ELFCLASS32

	if _, err := LoadBytes(raw); err == nil {
		t.Fatalf("LoadBytes of a 32-bit object: want an error, got nil")
	}
}
