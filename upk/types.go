package upk

import (
	"fmt"
	"strconv"

	"github.com/wippyai/upkg/errors"
)

// Package is the decoded header of one package file.
type Package struct {
	Tag             uint32
	FileVersion     uint16
	LicenseeVersion uint16
	PackageFlags    int32
	HeadersSize     int32  // FileVersion >= 249
	PackageGroup    string // FileVersion >= 269
	DependsOffset   int32  // FileVersion >= 415

	// Reserved holds three words of unknown meaning (FileVersion >= 623).
	Reserved [3]int32

	EngineVersion    int32 // FileVersion >= 245
	CookerVersion    int32 // FileVersion >= 277
	CompressionFlags int32 // FileVersion >= 334
	Reserved482      int32 // FileVersion >= 482

	GUID        [16]byte
	Generations []Generation
	Names       []Name
	Imports     []Import
	Exports     []Export

	// Tail is every byte past the furthest point reached by the header and
	// table decoders, kept verbatim.
	Tail []byte

	Summary Summary
}

// Version recombines FileVersion and LicenseeVersion into the on-disk word.
func (p *Package) Version() uint32 {
	return uint32(p.LicenseeVersion)<<16 | uint32(p.FileVersion)
}

// Summary is the table of contents as declared by the header, plus the
// extents the decoder actually covered.
type Summary struct {
	NameCount    uint32
	NameOffset   uint32
	ExportCount  uint32
	ExportOffset uint32
	ImportCount  uint32
	ImportOffset uint32

	// HeaderEnd is the cursor position after the fixed header fields.
	HeaderEnd int64
	// TailOffset is where Tail starts: the maximum end of all regions.
	TailOffset int64
	// StreamSize is the length of the source, or -1 if it could not be determined.
	StreamSize int64
	// Regions lists decoded tables in decode order.
	Regions []Region
}

// Region is a contiguous byte range covered by one decoded table.
type Region struct {
	Table string
	Start int64
	End   int64
}

// Len returns the region size in bytes.
func (r Region) Len() int64 {
	return r.End - r.Start
}

// NameRef is an index into Package.Names.
type NameRef uint32

// Name is one entry of the name table. Its identity is its index.
type Name struct {
	Text  string `yaml:"text"`
	Flags uint64 `yaml:"flags"`
}

// nameRef is a name reference as stored on disk. Number is the companion
// word that follows every index; it is decoded and not retained.
type nameRef struct {
	Index  NameRef
	Number uint32
}

// Name returns the name at ref.
func (p *Package) Name(ref NameRef) (Name, error) {
	if int64(ref) >= int64(len(p.Names)) {
		return Name{}, errors.OutOfBounds(errors.PhaseDecode, []string{TableNames}, int(ref), len(p.Names))
	}
	return p.Names[ref], nil
}

// ObjectRef is a raw cross-table reference: 0 is null, a positive value n
// refers to Exports[n-1] and a negative value -n refers to Imports[n-1].
type ObjectRef int32

// IsNull reports whether r refers to nothing.
func (r ObjectRef) IsNull() bool { return r == 0 }

// IsExport reports whether r refers to the export table.
func (r ObjectRef) IsExport() bool { return r > 0 }

// IsImport reports whether r refers to the import table.
func (r ObjectRef) IsImport() bool { return r < 0 }

// Index returns the table index r points at, or -1 for null.
func (r ObjectRef) Index() int {
	switch {
	case r > 0:
		return int(r) - 1
	case r < 0:
		return -int(r) - 1
	default:
		return -1
	}
}

func (r ObjectRef) String() string {
	switch {
	case r > 0:
		return "export#" + strconv.Itoa(r.Index())
	case r < 0:
		return "import#" + strconv.Itoa(r.Index())
	default:
		return "null"
	}
}

// ObjectName dereferences ref and returns the object name of the import or
// export it points at. A null reference yields "".
func (p *Package) ObjectName(ref ObjectRef) (string, error) {
	switch {
	case ref.IsNull():
		return "", nil
	case ref.IsExport():
		i := ref.Index()
		if i >= len(p.Exports) {
			return "", errors.OutOfBounds(errors.PhaseDecode, []string{TableExports}, i, len(p.Exports))
		}
		return p.Exports[i].ObjectName, nil
	default:
		i := ref.Index()
		if i >= len(p.Imports) {
			return "", errors.OutOfBounds(errors.PhaseDecode, []string{TableImports}, i, len(p.Imports))
		}
		return p.Imports[i].ObjectName, nil
	}
}

// Import describes an object defined in another package.
type Import struct {
	ClassPackage string    `yaml:"class_package"`
	ClassName    string    `yaml:"class_name"`
	PackageIdx   ObjectRef `yaml:"package_idx"`
	ObjectName   string    `yaml:"object_name"`
}

// Export describes an object defined in this package. Its body lives at
// SerialOffset and is not read by the decoder.
type Export struct {
	ClassIdx     ObjectRef `yaml:"class_idx"`
	SuperIdx     ObjectRef `yaml:"super_idx"`
	PackageIdx   ObjectRef `yaml:"package_idx"`
	ObjectName   string    `yaml:"object_name"`
	Archetype    ObjectRef `yaml:"archetype"`
	ObjectFlags  uint64    `yaml:"object_flags"`
	SerialSize   uint32    `yaml:"serial_size"`
	SerialOffset uint32    `yaml:"serial_offset"`
	ExportFlags  uint32    `yaml:"export_flags"`
	Generations  []uint32  `yaml:"generations"`
	GUID         [16]byte  `yaml:"-"`
	Reserved     uint32    `yaml:"reserved"`
}

// Generation is the table sizes recorded for one save generation.
type Generation struct {
	ExportCount    int32 `yaml:"export_count"`
	NameCount      int32 `yaml:"name_count"`
	NetObjectCount int32 `yaml:"net_object_count"` // FileVersion >= 322
}

// Block describes one compressed chunk. Parse does not consume these;
// see ReadBlock.
type Block struct {
	CompressedSize   uint32
	UncompressedSize uint32
}

// FormatGUID renders a raw GUID as four hex words, each stored little-endian.
func FormatGUID(g [16]byte) string {
	w := func(i int) uint32 {
		return uint32(g[i]) | uint32(g[i+1])<<8 | uint32(g[i+2])<<16 | uint32(g[i+3])<<24
	}
	return fmt.Sprintf("%08X-%08X-%08X-%08X", w(0), w(4), w(8), w(12))
}
