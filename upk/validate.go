package upk

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wippyai/upkg/errors"
)

// Validate checks the decoded tables for structural consistency: object
// references stay inside the import and export tables, export bodies lie
// inside the stream, and generation counts are non-negative. It does not
// check what the referenced objects are.
func (p *Package) Validate() error {
	if err := p.validateGenerations(); err != nil {
		return err
	}
	if err := p.validateImports(); err != nil {
		return err
	}
	if err := p.validateExports(); err != nil {
		return err
	}
	return nil
}

// ParseValidate parses a package header and validates it.
// This is a convenience function combining Parse and Validate.
func ParseValidate(r io.ReadSeeker, opts ...Option) (*Package, error) {
	p, err := Parse(r, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Package) validateGenerations() error {
	for i, g := range p.Generations {
		if g.ExportCount < 0 || g.NameCount < 0 || g.NetObjectCount < 0 {
			return errors.InvalidData(errors.PhaseValidate,
				[]string{"generations", strconv.Itoa(i)},
				fmt.Sprintf("negative count (exports %d, names %d, net objects %d)",
					g.ExportCount, g.NameCount, g.NetObjectCount))
		}
	}
	return nil
}

func (p *Package) checkRef(ref ObjectRef, path ...string) error {
	if ref.IsNull() {
		return nil
	}
	i, n := ref.Index(), len(p.Imports)
	if ref.IsExport() {
		n = len(p.Exports)
	}
	if i >= n {
		e := errors.OutOfBounds(errors.PhaseValidate, path, i, n)
		e.Detail = fmt.Sprintf("%s: %s", ref, e.Detail)
		return e
	}
	return nil
}

func (p *Package) validateImports() error {
	for i, imp := range p.Imports {
		if err := p.checkRef(imp.PackageIdx, TableImports, strconv.Itoa(i), "packageIdx"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Package) validateExports() error {
	size := p.Summary.StreamSize
	for i, e := range p.Exports {
		idx := strconv.Itoa(i)
		checks := []struct {
			field string
			ref   ObjectRef
		}{
			{"classIdx", e.ClassIdx},
			{"superIdx", e.SuperIdx},
			{"packageIdx", e.PackageIdx},
			{"archetype", e.Archetype},
		}
		for _, c := range checks {
			if err := p.checkRef(c.ref, TableExports, idx, c.field); err != nil {
				return err
			}
		}
		if size >= 0 && e.SerialSize > 0 {
			end := int64(e.SerialOffset) + int64(e.SerialSize)
			if end > size {
				return errors.InvalidData(errors.PhaseValidate,
					[]string{TableExports, idx, "serialOffset"},
					fmt.Sprintf("body [%d, %d) past end of stream (%d bytes)", e.SerialOffset, end, size))
			}
		}
	}
	return nil
}
