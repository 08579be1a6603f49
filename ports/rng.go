package ports

// RNGPort derives deterministic seeds for named operations
type RNGPort interface {
	// SeedFor maps a base seed and an operation name onto the seed the operation runs with.
	// The same pair always yields the same seed.
	SeedFor(name string, base int64) int64
}
