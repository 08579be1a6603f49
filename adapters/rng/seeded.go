package rng

import (
	"segstats/domain/core"
)

// SeededRNG derives per-operation seeds by hashing the operation name with the base seed
type SeededRNG struct{}

// NewSeededRNG creates the hashing seed deriver
func NewSeededRNG() *SeededRNG {
	return &SeededRNG{}
}

// SeedFor implements ports.RNGPort
func (SeededRNG) SeedFor(name string, base int64) int64 {
	return core.DeriveSeed(base, name)
}
