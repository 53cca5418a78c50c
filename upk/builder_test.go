package upk_test

import (
	"github.com/wippyai/upkg/upk"
	"github.com/wippyai/upkg/upk/internal/binary"
)

// rawImport is an import record with unresolved name indices.
type rawImport struct {
	classPackage uint32
	className    uint32
	packageIdx   int32
	objectName   uint32
}

// rawExport is an export record with an unresolved name index.
type rawExport struct {
	classIdx     int32
	superIdx     int32
	packageIdx   int32
	objectName   uint32
	archetype    int32
	objectFlags  uint64
	serialSize   uint32
	serialOffset uint32
	exportFlags  uint32
	generations  []uint32
	guid         [16]byte
	reserved     uint32
}

// image builds a package file for tests.
type image struct {
	tag              uint32
	version          uint32
	headersSize      int32
	packageGroup     string
	packageFlags     int32
	dependsOffset    int32
	reserved         [3]int32
	guid             [16]byte
	generations      []upk.Generation
	engineVersion    int32
	cookerVersion    int32
	compressionFlags int32
	reserved482      int32

	names   []upk.Name
	imports []rawImport
	exports []rawExport

	// order is the physical table order; defaults to names, imports, exports.
	order []string
	// gap is written between the header and the first table.
	gap []byte
	// tail is appended after the last table.
	tail []byte
	// wideNames writes name text as UTF-16.
	wideNames bool
}

func newImage(version uint32) *image {
	return &image{tag: upk.PackageTag, version: version}
}

func (im *image) fileVersion() uint16 {
	return uint16(im.version & 0xFFFF)
}

// build returns the encoded file and the offset each table was written at.
func (im *image) build() ([]byte, map[string]uint32) {
	w := binary.NewWriter()
	v := im.fileVersion()

	w.WriteU32(im.tag)
	w.WriteU32(im.version)
	if v >= 249 {
		w.WriteI32(im.headersSize)
	}
	if v >= 269 {
		w.WriteString(im.packageGroup)
	}
	w.WriteI32(im.packageFlags)

	w.WriteU32(uint32(len(im.names)))
	nameOffAt := w.Len()
	w.WriteU32(0)
	w.WriteU32(uint32(len(im.exports)))
	exportOffAt := w.Len()
	w.WriteU32(0)
	w.WriteU32(uint32(len(im.imports)))
	importOffAt := w.Len()
	w.WriteU32(0)

	if v >= 415 {
		w.WriteI32(im.dependsOffset)
	}
	if v >= 623 {
		for _, r := range im.reserved {
			w.WriteI32(r)
		}
	}
	if v >= 584 {
		w.WriteI32(-1)
	}
	w.WriteBytes(im.guid[:])
	w.WriteI32(int32(len(im.generations)))
	for _, g := range im.generations {
		w.WriteI32(g.ExportCount)
		w.WriteI32(g.NameCount)
		if v >= 322 {
			w.WriteI32(g.NetObjectCount)
		}
	}
	if v >= 245 {
		w.WriteI32(im.engineVersion)
	}
	if v >= 277 {
		w.WriteI32(im.cookerVersion)
	}
	if v >= 334 {
		w.WriteI32(im.compressionFlags)
	}
	if v >= 482 {
		w.WriteI32(im.reserved482)
	}
	w.WriteBytes(im.gap)

	order := im.order
	if order == nil {
		order = []string{upk.TableNames, upk.TableImports, upk.TableExports}
	}
	offsets := map[string]uint32{}
	for _, table := range order {
		offsets[table] = uint32(w.Len())
		switch table {
		case upk.TableNames:
			w.PutU32(nameOffAt, uint32(w.Len()))
			for _, n := range im.names {
				if im.wideNames {
					w.WriteWideString(n.Text)
				} else {
					w.WriteString(n.Text)
				}
				w.WriteU64(n.Flags)
			}
		case upk.TableImports:
			w.PutU32(importOffAt, uint32(w.Len()))
			for _, imp := range im.imports {
				w.WriteU32(imp.classPackage)
				w.WriteU32(0)
				w.WriteU32(imp.className)
				w.WriteU32(0)
				w.WriteI32(imp.packageIdx)
				w.WriteU32(imp.objectName)
				w.WriteU32(0)
			}
		case upk.TableExports:
			w.PutU32(exportOffAt, uint32(w.Len()))
			for _, e := range im.exports {
				w.WriteI32(e.classIdx)
				w.WriteI32(e.superIdx)
				w.WriteI32(e.packageIdx)
				w.WriteU32(e.objectName)
				w.WriteU32(0)
				w.WriteI32(e.archetype)
				w.WriteU64(e.objectFlags)
				w.WriteU32(e.serialSize)
				w.WriteU32(e.serialOffset)
				w.WriteU32(e.exportFlags)
				w.WriteU32(uint32(len(e.generations)))
				for _, g := range e.generations {
					w.WriteU32(g)
				}
				w.WriteBytes(e.guid[:])
				w.WriteU32(e.reserved)
			}
		}
	}
	w.WriteBytes(im.tail)
	return w.Bytes(), offsets
}

func (im *image) bytes() []byte {
	data, _ := im.build()
	return data
}

// sampleImage is a small v868 package with every table populated.
func sampleImage() *image {
	im := newImage(868 | 0x0002<<16)
	im.packageGroup = "None"
	im.packageFlags = 0x0001
	im.names = []upk.Name{
		{Text: "Core", Flags: 0x0007001000000000},
		{Text: "Object", Flags: 0},
		{Text: "Package", Flags: 0},
		{Text: "Class", Flags: 0},
		{Text: "MyActor", Flags: 0x10},
		{Text: "Engine", Flags: 0},
	}
	im.imports = []rawImport{
		{classPackage: 0, className: 2, packageIdx: 0, objectName: 5},
		{classPackage: 0, className: 3, packageIdx: -1, objectName: 1},
	}
	im.exports = []rawExport{
		{
			classIdx:     -2,
			superIdx:     0,
			packageIdx:   0,
			objectName:   4,
			archetype:    0,
			objectFlags:  0x000F0004,
			serialSize:   4,
			serialOffset: 0,
			exportFlags:  1,
			generations:  []uint32{1, 2},
			guid:         [16]byte{0xA, 0xB},
			reserved:     0x6C,
		},
	}
	return im
}
