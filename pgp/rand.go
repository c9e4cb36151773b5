package pgp

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
)

// seededReader mixes externally supplied entropy into crypto/rand output:
// every read XORs a block of OS randomness with a keystream derived from
// the accumulated seed digest, so seeding can only add uncertainty, never
// replace the underlying CSPRNG.
type seededReader struct {
	e *Engine
}

func (sr *seededReader) Read(p []byte) (int, error) {
	n, err := io.ReadFull(rand.Reader, p)
	if err != nil {
		return n, err
	}
	sr.e.mu.Lock()
	seeded := sr.e.pool != nil
	var digest [32]byte
	if seeded {
		digest = sha256.Sum256(sr.e.pool.Sum(nil))
	}
	sr.e.mu.Unlock()
	if !seeded {
		return n, nil
	}
	// Expand the digest into a keystream of len(p) via counter-mode SHA-256
	// and XOR it into the OS-random block in place.
	var counter uint32
	stream := make([]byte, 0, len(p))
	for len(stream) < len(p) {
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], counter)
		h := sha256.New()
		h.Write(digest[:])
		h.Write(ctr[:])
		stream = append(stream, h.Sum(nil)...)
		counter++
	}
	for i := range p {
		p[i] ^= stream[i]
	}
	return n, nil
}

// RandSeed folds additional entropy into the engine's CSPRNG. The call is
// additive: each call mixes new bytes into the running seed digest rather
// than replacing previously seeded material.
func (e *Engine) RandSeed(seed []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pool == nil {
		e.pool = sha256.New()
	}
	e.pool.Write(seed)
}
