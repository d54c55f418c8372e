package elfparse

import (
	"fmt"
	"strings"
)

// enumerant is the set of integer widths ELF tags are stored in.
type enumerant interface {
	~uint8 | ~uint16 | ~uint32
}

// checkEnum returns v when it is a member of names, an InvalidEnumerantError otherwise.
func checkEnum[T enumerant](names map[T]string, v T, field string) (T, error) {
	if _, ok := names[v]; !ok {
		return v, &InvalidEnumerantError{Field: field, Value: uint64(v)}
	}
	return v, nil
}

func enumString[T enumerant](names map[T]string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%#x)", uint64(v))
}

// Class is the e_ident[EI_CLASS] byte: the file's address width.
type Class uint8

// Class values
const (
	ClassNone Class = 0
	Class32   Class = 1
	Class64   Class = 2
)

var classNames = map[Class]string{
	ClassNone: "none",
	Class32:   "ELF32",
	Class64:   "ELF64",
}

func (c Class) String() string { return enumString(classNames, c) }

// Data is the e_ident[EI_DATA] byte: the byte order of multi-byte fields.
type Data uint8

// Data values
const (
	DataNone Data = 0
	Data2LSB Data = 1
	Data2MSB Data = 2
)

var dataNames = map[Data]string{
	DataNone: "none",
	Data2LSB: "little-endian",
	Data2MSB: "big-endian",
}

func (d Data) String() string { return enumString(dataNames, d) }

// IdentVersion is the e_ident[EI_VERSION] byte.
type IdentVersion uint8

// IdentVersion values
const (
	IdentVersionNone    IdentVersion = 0
	IdentVersionCurrent IdentVersion = 1
)

var identVersionNames = map[IdentVersion]string{
	IdentVersionNone:    "none",
	IdentVersionCurrent: "current",
}

func (v IdentVersion) String() string { return enumString(identVersionNames, v) }

// OSABI is the e_ident[EI_OSABI] byte. It is informational only.
type OSABI uint8

// OSABI values
const (
	OSABINone       OSABI = 0
	OSABIHPUX       OSABI = 1
	OSABINetBSD     OSABI = 2
	OSABILinux      OSABI = 3
	OSABIHurd       OSABI = 4
	OSABISolaris    OSABI = 6
	OSABIAIX        OSABI = 7
	OSABIIRIX       OSABI = 8
	OSABIFreeBSD    OSABI = 9
	OSABITru64      OSABI = 10
	OSABIModesto    OSABI = 11
	OSABIOpenBSD    OSABI = 12
	OSABIOpenVMS    OSABI = 13
	OSABINSK        OSABI = 14
	OSABIAROS       OSABI = 15
	OSABIFenixOS    OSABI = 16
	OSABICloudABI   OSABI = 17
	OSABIOpenVOS    OSABI = 18
	OSABIARMAEABI   OSABI = 64
	OSABIARM        OSABI = 97
	OSABIStandalone OSABI = 255
)

var osabiNames = map[OSABI]string{
	OSABINone:       "SYSV",
	OSABIHPUX:       "HPUX",
	OSABINetBSD:     "NetBSD",
	OSABILinux:      "Linux",
	OSABIHurd:       "Hurd",
	OSABISolaris:    "Solaris",
	OSABIAIX:        "AIX",
	OSABIIRIX:       "IRIX",
	OSABIFreeBSD:    "FreeBSD",
	OSABITru64:      "Tru64",
	OSABIModesto:    "Modesto",
	OSABIOpenBSD:    "OpenBSD",
	OSABIOpenVMS:    "OpenVMS",
	OSABINSK:        "NSK",
	OSABIAROS:       "AROS",
	OSABIFenixOS:    "FenixOS",
	OSABICloudABI:   "CloudABI",
	OSABIOpenVOS:    "OpenVOS",
	OSABIARMAEABI:   "ARM EABI",
	OSABIARM:        "ARM",
	OSABIStandalone: "standalone",
}

func (o OSABI) String() string { return enumString(osabiNames, o) }

// Type is the e_type object file type.
type Type uint16

// Type values
const (
	TypeNone Type = 0
	TypeRel  Type = 1
	TypeExec Type = 2
	TypeDyn  Type = 3
	TypeCore Type = 4
)

var typeNames = map[Type]string{
	TypeNone: "NONE",
	TypeRel:  "REL",
	TypeExec: "EXEC",
	TypeDyn:  "DYN",
	TypeCore: "CORE",
}

func (t Type) String() string { return enumString(typeNames, t) }

// Machine is the e_machine target architecture.
type Machine uint16

// Machine values
const (
	MachineNone        Machine = 0
	MachineM32         Machine = 1
	MachineSPARC       Machine = 2
	Machine386         Machine = 3
	Machine68K         Machine = 4
	Machine88K         Machine = 5
	Machine860         Machine = 7
	MachineMIPS        Machine = 8
	MachineS370        Machine = 9
	MachineMIPSRS3LE   Machine = 10
	MachinePARISC      Machine = 15
	MachineSPARC32Plus Machine = 18
	MachinePPC         Machine = 20
	MachinePPC64       Machine = 21
	MachineS390        Machine = 22
	MachineARM         Machine = 40
	MachineSH          Machine = 42
	MachineSPARCV9     Machine = 43
	MachineIA64        Machine = 50
	MachineX86_64      Machine = 62
	MachineVAX         Machine = 75
	MachineAArch64     Machine = 183
	MachineRISCV       Machine = 243
	MachineBPF         Machine = 247
	MachineLoongArch   Machine = 258
)

var machineNames = map[Machine]string{
	MachineNone:        "none",
	MachineM32:         "M32",
	MachineSPARC:       "SPARC",
	Machine386:         "386",
	Machine68K:         "68K",
	Machine88K:         "88K",
	Machine860:         "860",
	MachineMIPS:        "MIPS",
	MachineS370:        "S370",
	MachineMIPSRS3LE:   "MIPS RS3000 LE",
	MachinePARISC:      "PA-RISC",
	MachineSPARC32Plus: "SPARC32+",
	MachinePPC:         "PowerPC",
	MachinePPC64:       "PowerPC64",
	MachineS390:        "S390",
	MachineARM:         "ARM",
	MachineSH:          "SuperH",
	MachineSPARCV9:     "SPARC V9",
	MachineIA64:        "IA-64",
	MachineX86_64:      "x86-64",
	MachineVAX:         "VAX",
	MachineAArch64:     "AArch64",
	MachineRISCV:       "RISC-V",
	MachineBPF:         "BPF",
	MachineLoongArch:   "LoongArch",
}

func (m Machine) String() string { return enumString(machineNames, m) }

// Version is the e_version header version word.
type Version uint32

// Version values
const (
	VersionNone    Version = 0
	VersionCurrent Version = 1
	VersionNum     Version = 2
)

var versionNames = map[Version]string{
	VersionNone:    "none",
	VersionCurrent: "current",
	VersionNum:     "num",
}

func (v Version) String() string { return enumString(versionNames, v) }

// ProgType is the p_type segment type.
type ProgType uint32

// ProgType values
const (
	ProgTypeNull        ProgType = 0
	ProgTypeLoad        ProgType = 1
	ProgTypeDynamic     ProgType = 2
	ProgTypeInterp      ProgType = 3
	ProgTypeNote        ProgType = 4
	ProgTypeShlib       ProgType = 5
	ProgTypePhdr        ProgType = 6
	ProgTypeTLS         ProgType = 7
	ProgTypeLoOS        ProgType = 0x60000000
	ProgTypeGNUEHFrame  ProgType = 0x6474e550
	ProgTypeGNUStack    ProgType = 0x6474e551
	ProgTypeGNURelro    ProgType = 0x6474e552
	ProgTypeGNUProperty ProgType = 0x6474e553
	ProgTypeHiOS        ProgType = 0x6fffffff
	ProgTypeLoProc      ProgType = 0x70000000
	ProgTypeHiProc      ProgType = 0x7fffffff
)

var progTypeNames = map[ProgType]string{
	ProgTypeNull:        "NULL",
	ProgTypeLoad:        "LOAD",
	ProgTypeDynamic:     "DYNAMIC",
	ProgTypeInterp:      "INTERP",
	ProgTypeNote:        "NOTE",
	ProgTypeShlib:       "SHLIB",
	ProgTypePhdr:        "PHDR",
	ProgTypeTLS:         "TLS",
	ProgTypeLoOS:        "LOOS",
	ProgTypeGNUEHFrame:  "GNU_EH_FRAME",
	ProgTypeGNUStack:    "GNU_STACK",
	ProgTypeGNURelro:    "GNU_RELRO",
	ProgTypeGNUProperty: "GNU_PROPERTY",
	ProgTypeHiOS:        "HIOS",
	ProgTypeLoProc:      "LOPROC",
	ProgTypeHiProc:      "HIPROC",
}

func (t ProgType) String() string {
	if s, ok := progTypeNames[t]; ok {
		return s
	}
	switch {
	case t >= ProgTypeLoOS && t <= ProgTypeHiOS:
		return fmt.Sprintf("LOOS+%#x", uint32(t-ProgTypeLoOS))
	case t >= ProgTypeLoProc && t <= ProgTypeHiProc:
		return fmt.Sprintf("LOPROC+%#x", uint32(t-ProgTypeLoProc))
	}
	return fmt.Sprintf("unknown(%#x)", uint32(t))
}

// parseProgType accepts every named value and the reserved OS and processor ranges.
func parseProgType(v uint32) (ProgType, error) {
	t := ProgType(v)
	if _, ok := progTypeNames[t]; ok {
		return t, nil
	}
	if (t >= ProgTypeLoOS && t <= ProgTypeHiOS) || (t >= ProgTypeLoProc && t <= ProgTypeHiProc) {
		return t, nil
	}
	return t, &InvalidEnumerantError{Field: "p_type", Value: uint64(v)}
}

// ProgFlag is the p_flags permission bitfield.
type ProgFlag uint32

// ProgFlag bits
const (
	ProgFlagX ProgFlag = 1 << 0
	ProgFlagW ProgFlag = 1 << 1
	ProgFlagR ProgFlag = 1 << 2
)

// String renders the flags the way readelf does, e.g. "R E".
func (f ProgFlag) String() string {
	out := []byte("   ")
	if f&ProgFlagR != 0 {
		out[0] = 'R'
	}
	if f&ProgFlagW != 0 {
		out[1] = 'W'
	}
	if f&ProgFlagX != 0 {
		out[2] = 'E'
	}
	return string(out)
}

// SectionType is the sh_type section type.
type SectionType uint32

// SectionType values
const (
	SectionTypeNull          SectionType = 0
	SectionTypeProgBits      SectionType = 1
	SectionTypeSymTab        SectionType = 2
	SectionTypeStrTab        SectionType = 3
	SectionTypeRela          SectionType = 4
	SectionTypeHash          SectionType = 5
	SectionTypeDynamic       SectionType = 6
	SectionTypeNote          SectionType = 7
	SectionTypeNoBits        SectionType = 8
	SectionTypeRel           SectionType = 9
	SectionTypeShlib         SectionType = 10
	SectionTypeDynSym        SectionType = 11
	SectionTypeInitArray     SectionType = 14
	SectionTypeFiniArray     SectionType = 15
	SectionTypePreinitArray  SectionType = 16
	SectionTypeGroup         SectionType = 17
	SectionTypeSymTabShndx   SectionType = 18
	SectionTypeRelr          SectionType = 19
	SectionTypeLoOS          SectionType = 0x60000000
	SectionTypeGNUAttributes SectionType = 0x6ffffff5
	SectionTypeGNUHash       SectionType = 0x6ffffff6
	SectionTypeGNULiblist    SectionType = 0x6ffffff7
	SectionTypeChecksum      SectionType = 0x6ffffff8
	SectionTypeGNUVerdef     SectionType = 0x6ffffffd
	SectionTypeGNUVerneed    SectionType = 0x6ffffffe
	SectionTypeGNUVersym     SectionType = 0x6fffffff
	SectionTypeLoProc        SectionType = 0x70000000
	SectionTypeHiProc        SectionType = 0x7fffffff
	SectionTypeLoUser        SectionType = 0x80000000
	SectionTypeHiUser        SectionType = 0xffffffff
)

var sectionTypeNames = map[SectionType]string{
	SectionTypeNull:          "NULL",
	SectionTypeProgBits:      "PROGBITS",
	SectionTypeSymTab:        "SYMTAB",
	SectionTypeStrTab:        "STRTAB",
	SectionTypeRela:          "RELA",
	SectionTypeHash:          "HASH",
	SectionTypeDynamic:       "DYNAMIC",
	SectionTypeNote:          "NOTE",
	SectionTypeNoBits:        "NOBITS",
	SectionTypeRel:           "REL",
	SectionTypeShlib:         "SHLIB",
	SectionTypeDynSym:        "DYNSYM",
	SectionTypeInitArray:     "INIT_ARRAY",
	SectionTypeFiniArray:     "FINI_ARRAY",
	SectionTypePreinitArray:  "PREINIT_ARRAY",
	SectionTypeGroup:         "GROUP",
	SectionTypeSymTabShndx:   "SYMTAB_SHNDX",
	SectionTypeRelr:          "RELR",
	SectionTypeLoOS:          "LOOS",
	SectionTypeGNUAttributes: "GNU_ATTRIBUTES",
	SectionTypeGNUHash:       "GNU_HASH",
	SectionTypeGNULiblist:    "GNU_LIBLIST",
	SectionTypeChecksum:      "CHECKSUM",
	SectionTypeGNUVerdef:     "VERDEF",
	SectionTypeGNUVerneed:    "VERNEED",
	SectionTypeGNUVersym:     "VERSYM",
	SectionTypeLoProc:        "LOPROC",
	SectionTypeHiProc:        "HIPROC",
	SectionTypeLoUser:        "LOUSER",
	SectionTypeHiUser:        "HIUSER",
}

func (t SectionType) String() string {
	if s, ok := sectionTypeNames[t]; ok {
		return s
	}
	switch {
	case t >= SectionTypeLoOS && t <= SectionTypeGNUVersym:
		return fmt.Sprintf("LOOS+%#x", uint32(t-SectionTypeLoOS))
	case t >= SectionTypeLoProc && t <= SectionTypeHiProc:
		return fmt.Sprintf("LOPROC+%#x", uint32(t-SectionTypeLoProc))
	case t >= SectionTypeLoUser:
		return fmt.Sprintf("LOUSER+%#x", uint32(t-SectionTypeLoUser))
	}
	return fmt.Sprintf("unknown(%#x)", uint32(t))
}

// parseSectionType accepts every named value and the reserved OS, processor
// and user ranges.
func parseSectionType(v uint32) (SectionType, error) {
	t := SectionType(v)
	if _, ok := sectionTypeNames[t]; ok {
		return t, nil
	}
	if t >= SectionTypeLoOS {
		return t, nil
	}
	return t, &InvalidEnumerantError{Field: "sh_type", Value: uint64(v)}
}

// SectionFlag is the sh_flags attribute bitmask.
type SectionFlag uint64

// SectionFlag bits
const (
	SectionFlagWrite     SectionFlag = 0x1
	SectionFlagAlloc     SectionFlag = 0x2
	SectionFlagExecInstr SectionFlag = 0x4
	SectionFlagMerge     SectionFlag = 0x10
	SectionFlagStrings   SectionFlag = 0x20
	SectionFlagInfoLink  SectionFlag = 0x40
	SectionFlagTLS       SectionFlag = 0x400
)

var sectionFlagLetters = []struct {
	flag   SectionFlag
	letter byte
}{
	{SectionFlagWrite, 'W'},
	{SectionFlagAlloc, 'A'},
	{SectionFlagExecInstr, 'X'},
	{SectionFlagMerge, 'M'},
	{SectionFlagStrings, 'S'},
	{SectionFlagInfoLink, 'I'},
	{SectionFlagTLS, 'T'},
}

// String renders the known flags with readelf's key letters, e.g. "WA".
func (f SectionFlag) String() string {
	var sb strings.Builder
	for _, fl := range sectionFlagLetters {
		if f&fl.flag != 0 {
			sb.WriteByte(fl.letter)
		}
	}
	return sb.String()
}
