// Package upk decodes the header of a versioned engine package file.
//
// A package starts with a fixed header whose layout depends on the file
// version stored right after the tag. The header declares three tables by
// count and absolute offset: names, imports and exports. Imports and exports
// refer to names by index; Parse resolves those indices eagerly and fails if
// one is out of range. Everything past the furthest decoded byte is kept in
// Package.Tail.
//
// # Parsing
//
//	f, _ := os.Open("Core.u")
//	defer f.Close()
//	pkg, err := upk.Parse(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, imp := range pkg.Imports {
//	    fmt.Println(imp.ClassName, imp.ObjectName)
//	}
//
// Parse rejects files whose tag is not PackageTag; pass WithoutTagCheck to
// decode anyway. ParseValidate additionally runs Validate.
//
// # Version gating
//
//	FileVersion >= 245  EngineVersion
//	FileVersion >= 249  HeadersSize
//	FileVersion >= 269  PackageGroup
//	FileVersion >= 277  CookerVersion
//	FileVersion >= 322  Generation.NetObjectCount
//	FileVersion >= 334  CompressionFlags
//	FileVersion >= 415  DependsOffset
//	FileVersion >= 482  Reserved482
//	FileVersion >= 584  one discarded word
//	FileVersion >= 623  Reserved
//
// # Object references
//
// ObjectRef values in imports and exports are kept raw. Use ObjectName to
// dereference one, or IsImport/IsExport/Index to inspect it.
//
// # Errors
//
// Every failure is an *errors.Error carrying the field, absolute offset and
// table path. Compare with the Err* sentinels:
//
//	if errors.Is(err, upk.ErrIndex) { ... }
package upk
