package upk

import (
	"io"
	"strconv"

	"github.com/wippyai/upkg/errors"
	"github.com/wippyai/upkg/upk/internal/binary"
)

// Smallest on-disk record sizes, used to bound preallocation.
const (
	minNameSize       = 4 + 8
	importSize        = 8 + 8 + 4 + 8
	minExportSize     = 4*3 + 8 + 4 + 8 + 4*3 + 4 + binary.GUIDSize + 4
	minGenerationSize = 4 * 2
)

// capFor bounds a declared record count by what the rest of the stream can hold.
func capFor(r *binary.Reader, count uint32, minSize int64) int {
	n := int64(count)
	if rem := r.Remaining(); rem >= 0 && rem/minSize < n {
		n = rem / minSize
	}
	return int(n)
}

func readGenerations(r *binary.Reader, netObjects bool) ([]Generation, error) {
	count, err := r.ReadI32("generationCount")
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}
	gens := make([]Generation, 0, capFor(r, uint32(count), minGenerationSize))
	for i := int32(0); i < count; i++ {
		g, err := readGeneration(r, netObjects)
		if err != nil {
			return nil, errors.WithPath(err, "generations", strconv.Itoa(int(i)))
		}
		gens = append(gens, g)
	}
	return gens, nil
}

func readGeneration(r *binary.Reader, netObjects bool) (Generation, error) {
	var g Generation
	var err error
	if g.ExportCount, err = r.ReadI32("exportCount"); err != nil {
		return g, err
	}
	if g.NameCount, err = r.ReadI32("nameCount"); err != nil {
		return g, err
	}
	if netObjects {
		if g.NetObjectCount, err = r.ReadI32("netObjectCount"); err != nil {
			return g, err
		}
	}
	return g, nil
}

// ReadBlock decodes one compressed chunk descriptor at the current position of r.
func ReadBlock(r io.ReadSeeker) (Block, error) {
	br := binary.NewReader(r)
	var b Block
	var err error
	if b.CompressedSize, err = br.ReadU32("compressedSize"); err != nil {
		return b, err
	}
	if b.UncompressedSize, err = br.ReadU32("uncompressedSize"); err != nil {
		return b, err
	}
	return b, nil
}

func readNameRef(r *binary.Reader, field string) (nameRef, int64, error) {
	at := r.Position()
	idx, err := r.ReadU32(field)
	if err != nil {
		return nameRef{}, at, err
	}
	number, err := r.ReadU32(field + ".number")
	if err != nil {
		return nameRef{}, at, err
	}
	return nameRef{Index: NameRef(idx), Number: number}, at, nil
}

// readName reads a name reference and resolves it against the already
// decoded name table.
func readName(r *binary.Reader, p *Package, field string) (string, error) {
	ref, at, err := readNameRef(r, field)
	if err != nil {
		return "", err
	}
	if int64(ref.Index) >= int64(len(p.Names)) {
		return "", errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Field(field).Offset(at).Value(ref.Index).
			Detail("name index %d out of range (%d names)", ref.Index, len(p.Names)).
			Build()
	}
	return p.Names[ref.Index].Text, nil
}

func decodeNames(r *binary.Reader, p *Package, count uint32) error {
	p.Names = make([]Name, 0, capFor(r, count, minNameSize))
	for i := uint32(0); i < count; i++ {
		text, err := r.ReadString("text")
		if err != nil {
			return errors.WithPath(err, TableNames, strconv.FormatUint(uint64(i), 10))
		}
		flags, err := r.ReadU64("flags")
		if err != nil {
			return errors.WithPath(err, TableNames, strconv.FormatUint(uint64(i), 10))
		}
		p.Names = append(p.Names, Name{Text: text, Flags: flags})
	}
	return nil
}

func decodeImports(r *binary.Reader, p *Package, count uint32) error {
	p.Imports = make([]Import, 0, capFor(r, count, importSize))
	for i := uint32(0); i < count; i++ {
		imp, err := decodeImport(r, p)
		if err != nil {
			return errors.WithPath(err, TableImports, strconv.FormatUint(uint64(i), 10))
		}
		p.Imports = append(p.Imports, imp)
	}
	return nil
}

func decodeImport(r *binary.Reader, p *Package) (Import, error) {
	var imp Import
	var err error
	if imp.ClassPackage, err = readName(r, p, "classPackage"); err != nil {
		return imp, err
	}
	if imp.ClassName, err = readName(r, p, "className"); err != nil {
		return imp, err
	}
	pkg, err := r.ReadI32("packageIdx")
	if err != nil {
		return imp, err
	}
	imp.PackageIdx = ObjectRef(pkg)
	if imp.ObjectName, err = readName(r, p, "objectName"); err != nil {
		return imp, err
	}
	return imp, nil
}

func decodeExports(r *binary.Reader, p *Package, count uint32) error {
	p.Exports = make([]Export, 0, capFor(r, count, minExportSize))
	for i := uint32(0); i < count; i++ {
		exp, err := decodeExport(r, p)
		if err != nil {
			return errors.WithPath(err, TableExports, strconv.FormatUint(uint64(i), 10))
		}
		p.Exports = append(p.Exports, exp)
	}
	return nil
}

func decodeExport(r *binary.Reader, p *Package) (Export, error) {
	var e Export
	refs := []struct {
		name string
		dst  *ObjectRef
	}{
		{"classIdx", &e.ClassIdx},
		{"superIdx", &e.SuperIdx},
		{"packageIdx", &e.PackageIdx},
	}
	for _, ref := range refs {
		v, err := r.ReadI32(ref.name)
		if err != nil {
			return e, err
		}
		*ref.dst = ObjectRef(v)
	}

	var err error
	if e.ObjectName, err = readName(r, p, "objectName"); err != nil {
		return e, err
	}
	archetype, err := r.ReadI32("archetype")
	if err != nil {
		return e, err
	}
	e.Archetype = ObjectRef(archetype)
	if e.ObjectFlags, err = r.ReadU64("objectFlags"); err != nil {
		return e, err
	}
	if e.SerialSize, err = r.ReadU32("serialSize"); err != nil {
		return e, err
	}
	if e.SerialOffset, err = r.ReadU32("serialOffset"); err != nil {
		return e, err
	}
	if e.ExportFlags, err = r.ReadU32("exportFlags"); err != nil {
		return e, err
	}

	n, err := r.ReadU32("generationCount")
	if err != nil {
		return e, err
	}
	if n > 0 {
		e.Generations = make([]uint32, 0, capFor(r, n, 4))
		for i := uint32(0); i < n; i++ {
			g, err := r.ReadU32("generations")
			if err != nil {
				return e, err
			}
			e.Generations = append(e.Generations, g)
		}
	}

	if e.GUID, err = r.ReadGUID("guid"); err != nil {
		return e, err
	}
	if e.Reserved, err = r.ReadU32("reserved"); err != nil {
		return e, err
	}
	return e, nil
}
