package upkg

import (
	"os"

	"github.com/wippyai/upkg/errors"
	"github.com/wippyai/upkg/upk"
)

// Open decodes the package file at path.
func Open(path string, opts ...upk.Option) (*upk.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	defer f.Close()

	p, err := upk.Parse(f, opts...)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OpenValidate decodes the package file at path and validates it.
func OpenValidate(path string, opts ...upk.Option) (*upk.Package, error) {
	p, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
