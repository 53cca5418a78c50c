package upk

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/wippyai/upkg/errors"
	"github.com/wippyai/upkg/upk/internal/binary"
)

// Sentinel errors for errors.Is. They match any *errors.Error with the same
// phase and kind.
var (
	ErrTruncated    = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindTruncated}
	ErrInvalidUTF8  = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidUTF8}
	ErrIndex        = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindOutOfBounds}
	ErrSeek         = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindSeek}
	ErrInvalidMagic = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidMagic}
	ErrUnsupported  = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnsupported}
)

// headerField is one entry of the fixed header layout. The field is present
// when FileVersion >= since. at returns a pointer to the destination; a nil
// at marks a word that is read and discarded.
type headerField struct {
	name  string
	since uint16
	at    func(p *Package) any
}

// headerLayout lists the header fields that follow the tag and version word,
// in file order.
var headerLayout = []headerField{
	{"headersSize", VersionHeadersSize, func(p *Package) any { return &p.HeadersSize }},
	{"packageGroup", VersionPackageGroup, func(p *Package) any { return &p.PackageGroup }},
	{"packageFlags", 0, func(p *Package) any { return &p.PackageFlags }},
	{"nameCount", 0, func(p *Package) any { return &p.Summary.NameCount }},
	{"nameOffset", 0, func(p *Package) any { return &p.Summary.NameOffset }},
	{"exportCount", 0, func(p *Package) any { return &p.Summary.ExportCount }},
	{"exportOffset", 0, func(p *Package) any { return &p.Summary.ExportOffset }},
	{"importCount", 0, func(p *Package) any { return &p.Summary.ImportCount }},
	{"importOffset", 0, func(p *Package) any { return &p.Summary.ImportOffset }},
	{"dependsOffset", VersionDependsOffset, func(p *Package) any { return &p.DependsOffset }},
	{"reserved0", VersionReservedTriplet, func(p *Package) any { return &p.Reserved[0] }},
	{"reserved1", VersionReservedTriplet, func(p *Package) any { return &p.Reserved[1] }},
	{"reserved2", VersionReservedTriplet, func(p *Package) any { return &p.Reserved[2] }},
	{"discarded584", VersionDiscarded584, nil},
	{"guid", 0, func(p *Package) any { return &p.GUID }},
	{"generations", 0, func(p *Package) any { return &p.Generations }},
	{"engineVersion", VersionEngineVersion, func(p *Package) any { return &p.EngineVersion }},
	{"cookerVersion", VersionCookerVersion, func(p *Package) any { return &p.CookerVersion }},
	// The compressed chunk list that follows is not parsed.
	{"compressionFlags", VersionCompression, func(p *Package) any { return &p.CompressionFlags }},
	{"reserved482", VersionReserved482, func(p *Package) any { return &p.Reserved482 }},
}

// readGated decodes f into p if it is present at fileVersion.
func readGated(r *binary.Reader, p *Package, f headerField) error {
	if p.FileVersion < f.since {
		return nil
	}
	if f.at == nil {
		_, err := r.ReadI32(f.name)
		return err
	}
	var err error
	switch dst := f.at(p).(type) {
	case *int32:
		*dst, err = r.ReadI32(f.name)
	case *uint32:
		*dst, err = r.ReadU32(f.name)
	case *string:
		*dst, err = r.ReadString(f.name)
	case *[16]byte:
		*dst, err = r.ReadGUID(f.name)
	case *[]Generation:
		*dst, err = readGenerations(r, p.FileVersion >= VersionNetObjectCount)
	default:
		panic(fmt.Sprintf("upk: header field %s has unsupported type %T", f.name, dst))
	}
	return err
}

// Parse decodes a package header from r. Offsets in the file are absolute,
// so r is rewound to its start before decoding.
func Parse(r io.ReadSeeker, opts ...Option) (*Package, error) {
	cfg := newConfig(opts)
	br := binary.NewReader(r)
	if err := br.Seek("tag", 0); err != nil {
		return nil, err
	}

	p := &Package{}
	p.Summary.StreamSize = br.Size()

	if err := parseHeader(br, p, cfg); err != nil {
		return nil, errors.WithPath(err, TableHeader)
	}
	cfg.log.Debug("header decoded",
		zap.Uint32("tag", p.Tag),
		zap.Uint16("fileVersion", p.FileVersion),
		zap.Uint16("licenseeVersion", p.LicenseeVersion),
		zap.Int("generations", len(p.Generations)),
		zap.Int64("end", p.Summary.HeaderEnd))

	if err := parseTables(br, p, cfg); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseBytes decodes a package header from an in-memory image.
func ParseBytes(data []byte, opts ...Option) (*Package, error) {
	return Parse(bytes.NewReader(data), opts...)
}

func parseHeader(r *binary.Reader, p *Package, cfg *config) error {
	tag, err := r.ReadU32("tag")
	if err != nil {
		return err
	}
	p.Tag = tag
	if !cfg.skipTagCheck {
		switch tag {
		case PackageTag:
		case PackageTagSwapped:
			return errors.New(errors.PhaseDecode, errors.KindUnsupported).
				Field("tag").Offset(0).Value(tag).
				Detail("big-endian package").Build()
		default:
			return errors.InvalidMagic(tag, PackageTag)
		}
	}

	version, err := r.ReadU32("version")
	if err != nil {
		return err
	}
	p.FileVersion = uint16(version & 0xFFFF)
	p.LicenseeVersion = uint16(version >> 16)

	for _, f := range headerLayout {
		if err := readGated(r, p, f); err != nil {
			return err
		}
	}
	p.Summary.HeaderEnd = r.Position()
	return nil
}

// parseTables decodes the three offset-addressed tables and the tail. The
// tail starts at the furthest position any decoder reached, since tables
// may be stored in any order.
func parseTables(r *binary.Reader, p *Package, cfg *config) error {
	last := p.Summary.HeaderEnd
	s := &p.Summary

	tables := []struct {
		name   string
		count  uint32
		offset uint32
		decode func(r *binary.Reader, p *Package, count uint32) error
	}{
		{TableNames, s.NameCount, s.NameOffset, decodeNames},
		{TableImports, s.ImportCount, s.ImportOffset, decodeImports},
		{TableExports, s.ExportCount, s.ExportOffset, decodeExports},
	}

	for _, t := range tables {
		if t.count == 0 {
			continue
		}
		if err := r.Seek(t.name+"Offset", int64(t.offset)); err != nil {
			return errors.WithPath(err, t.name)
		}
		if err := t.decode(r, p, t.count); err != nil {
			return err
		}
		end := r.Position()
		s.Regions = append(s.Regions, Region{Table: t.name, Start: int64(t.offset), End: end})
		last = max(last, end)
		cfg.log.Debug("table decoded",
			zap.String("table", t.name),
			zap.Uint32("count", t.count),
			zap.Uint32("offset", t.offset),
			zap.Int64("end", end))
	}

	if err := r.Seek(TableTail, last); err != nil {
		return err
	}
	tail, err := r.ReadRemaining(TableTail)
	if err != nil {
		return err
	}
	p.Tail = tail
	s.TailOffset = last
	cfg.log.Debug("tail captured", zap.Int64("offset", last), zap.Int("size", len(tail)))
	return nil
}
