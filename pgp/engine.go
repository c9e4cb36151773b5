package pgp

import (
	"hash"
	"io"
	"sync"

	"github.com/deltamsg/core/profile"
)

// Engine is the process-wide OpenPGP engine. It is internally thread-safe
// and holds the additive CSPRNG entropy pool; construct one per process
// with NewEngine and share it across the pipeline.
type Engine struct {
	profile *profile.Custom

	mu   sync.Mutex
	pool hash.Hash
}

// NewEngine returns an engine configured with the Autocrypt key-generation
// and encryption profile.
func NewEngine() *Engine {
	return &Engine{profile: profile.Autocrypt()}
}

// NewEngineWithProfile returns an engine configured with a caller-chosen
// profile, for callers that need to interoperate outside the Autocrypt
// 2048-bit RSA baseline (profile.RFC4880, profile.RFC9580, profile.ProtonV1).
func NewEngineWithProfile(p *profile.Custom) *Engine {
	return &Engine{profile: p}
}

// randReader returns the entropy source for this engine. Seeded bytes are
// folded in additively via RandSeed; absent any seeding this is simply
// crypto/rand.
func (e *Engine) randReader() io.Reader {
	return &seededReader{e: e}
}
