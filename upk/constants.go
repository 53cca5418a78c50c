package upk

// PackageTag is the magic number at offset 0 of every little-endian package.
const PackageTag uint32 = 0x9E2A83C1

// PackageTagSwapped is PackageTag as seen when a big-endian package is read
// little-endian.
const PackageTagSwapped uint32 = 0xC1832A9E

// File version thresholds. A field gated on one of these is present when
// FileVersion >= the threshold.
const (
	VersionEngineVersion   uint16 = 245
	VersionHeadersSize     uint16 = 249
	VersionPackageGroup    uint16 = 269
	VersionCookerVersion   uint16 = 277
	VersionNetObjectCount  uint16 = 322
	VersionCompression     uint16 = 334
	VersionDependsOffset   uint16 = 415
	VersionReserved482     uint16 = 482
	VersionDiscarded584    uint16 = 584
	VersionReservedTriplet uint16 = 623
)

// Table names used in error paths and log fields.
const (
	TableNames   = "names"
	TableImports = "imports"
	TableExports = "exports"
	TableHeader  = "header"
	TableTail    = "tail"
)
