// Package upkg reads versioned engine package files.
//
// The module is organized into a few packages with distinct responsibilities:
//
//	upkg/               Root package with file helpers
//	├── upk/            Header, name, import and export table decoding
//	├── errors/         Structured error types for debugging
//	└── cmd/upkdump/    Command-line dumper and table browser
//
// # Quick Start
//
// Decode a package from disk:
//
//	pkg, err := upkg.Open("Engine.u")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, imp := range pkg.Imports {
//	    fmt.Println(imp.ClassPackage, imp.ClassName, imp.ObjectName)
//	}
//
// For in-memory images or custom sources use upk.Parse and upk.ParseBytes
// directly.
//
// # Thread Safety
//
// A decoded Package is plain data and may be read concurrently. Parse calls
// are independent; SetLogger must be called before the first one.
package upkg
