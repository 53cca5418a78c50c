package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/upkg/errors"
	"github.com/wippyai/upkg/upk"
)

const (
	formatYAML    = "yaml"
	formatSummary = "summary"

	tableImports     = "imports"
	tableExports     = "exports"
	tableNames       = "names"
	tableGenerations = "generations"
	tableAll         = "all"
)

// headerDoc is the header as emitted by -table all.
type headerDoc struct {
	FileVersion      uint16 `yaml:"file_version"`
	LicenseeVersion  uint16 `yaml:"licensee_version"`
	PackageFlags     int32  `yaml:"package_flags"`
	HeadersSize      int32  `yaml:"headers_size"`
	PackageGroup     string `yaml:"package_group"`
	DependsOffset    int32  `yaml:"depends_offset"`
	EngineVersion    int32  `yaml:"engine_version"`
	CookerVersion    int32  `yaml:"cooker_version"`
	CompressionFlags int32  `yaml:"compression_flags"`
	GUID             string `yaml:"guid"`
	TailOffset       int64  `yaml:"tail_offset"`
	TailSize         int    `yaml:"tail_size"`
}

type packageDoc struct {
	Header      headerDoc        `yaml:"header"`
	Generations []upk.Generation `yaml:"generations"`
	Names       []upk.Name       `yaml:"names"`
	Imports     []upk.Import     `yaml:"imports"`
	Exports     []upk.Export     `yaml:"exports"`
}

func newPackageDoc(p *upk.Package) packageDoc {
	return packageDoc{
		Header: headerDoc{
			FileVersion:      p.FileVersion,
			LicenseeVersion:  p.LicenseeVersion,
			PackageFlags:     p.PackageFlags,
			HeadersSize:      p.HeadersSize,
			PackageGroup:     p.PackageGroup,
			DependsOffset:    p.DependsOffset,
			EngineVersion:    p.EngineVersion,
			CookerVersion:    p.CookerVersion,
			CompressionFlags: p.CompressionFlags,
			GUID:             upk.FormatGUID(p.GUID),
			TailOffset:       p.Summary.TailOffset,
			TailSize:         len(p.Tail),
		},
		Generations: p.Generations,
		Names:       p.Names,
		Imports:     p.Imports,
		Exports:     p.Exports,
	}
}

// writeYAML emits the selected table. An empty table is written as [].
func writeYAML(w io.Writer, p *upk.Package, table string) error {
	var v any
	switch table {
	case tableImports:
		v = nonNil(p.Imports)
	case tableExports:
		v = nonNil(p.Exports)
	case tableNames:
		v = nonNil(p.Names)
	case tableGenerations:
		v = nonNil(p.Generations)
	default:
		v = newPackageDoc(p)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.PhaseOutput, errors.KindInvalidData, err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.PhaseOutput, errors.KindInvalidData, err, "encode yaml")
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// writeSummary prints a human-readable overview followed by the selected table.
func writeSummary(w io.Writer, p *upk.Package, table string) error {
	s := p.Summary
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Version:\t%d (licensee %d)\n", p.FileVersion, p.LicenseeVersion)
	fmt.Fprintf(tw, "Flags:\t0x%08X\n", uint32(p.PackageFlags))
	if p.PackageGroup != "" {
		fmt.Fprintf(tw, "Group:\t%s\n", p.PackageGroup)
	}
	fmt.Fprintf(tw, "Engine:\t%d\n", p.EngineVersion)
	fmt.Fprintf(tw, "GUID:\t%s\n", upk.FormatGUID(p.GUID))
	fmt.Fprintf(tw, "Names:\t%d @ 0x%X\n", s.NameCount, s.NameOffset)
	fmt.Fprintf(tw, "Imports:\t%d @ 0x%X\n", s.ImportCount, s.ImportOffset)
	fmt.Fprintf(tw, "Exports:\t%d @ 0x%X\n", s.ExportCount, s.ExportOffset)
	fmt.Fprintf(tw, "Generations:\t%d\n", len(p.Generations))
	fmt.Fprintf(tw, "Header end:\t0x%X\n", s.HeaderEnd)
	for _, r := range s.Regions {
		fmt.Fprintf(tw, "Region %s:\t[0x%X, 0x%X) %d bytes\n", r.Table, r.Start, r.End, r.Len())
	}
	fmt.Fprintf(tw, "Tail:\t%d bytes @ 0x%X\n", len(p.Tail), s.TailOffset)
	if err := tw.Flush(); err != nil {
		return errors.Wrap(errors.PhaseOutput, errors.KindInvalidData, err, "write summary")
	}

	var sections []string
	if table == tableAll {
		sections = []string{tableNames, tableImports, tableExports, tableGenerations}
	} else {
		sections = []string{table}
	}
	for _, name := range sections {
		fmt.Fprintf(w, "\n%s:\n", strings.ToUpper(name[:1])+name[1:])
		for _, row := range tableRows(p, name) {
			fmt.Fprintf(w, "  %s\n", row)
		}
	}
	return nil
}

// tableRows renders one line per entry of the named table.
func tableRows(p *upk.Package, table string) []string {
	var rows []string
	switch table {
	case tableNames:
		for i, n := range p.Names {
			rows = append(rows, fmt.Sprintf("%4d  %s  0x%016X", i, n.Text, n.Flags))
		}
	case tableImports:
		for i, imp := range p.Imports {
			rows = append(rows, fmt.Sprintf("%4d  %s.%s %s  outer=%s",
				i, imp.ClassPackage, imp.ClassName, imp.ObjectName, refName(p, imp.PackageIdx)))
		}
	case tableExports:
		for i, e := range p.Exports {
			rows = append(rows, fmt.Sprintf("%4d  %s  class=%s outer=%s  serial=%d@0x%X",
				i, e.ObjectName, refName(p, e.ClassIdx), refName(p, e.PackageIdx), e.SerialSize, e.SerialOffset))
		}
	case tableGenerations:
		for i, g := range p.Generations {
			rows = append(rows, fmt.Sprintf("%4d  exports=%d names=%d netObjects=%d",
				i, g.ExportCount, g.NameCount, g.NetObjectCount))
		}
	}
	return rows
}

// refName renders ref with the object name it points at, if it resolves.
func refName(p *upk.Package, ref upk.ObjectRef) string {
	if ref.IsNull() {
		return "-"
	}
	name, err := p.ObjectName(ref)
	if err != nil {
		return ref.String() + "(?)"
	}
	return name
}
