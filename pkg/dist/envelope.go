// Package dist packages chunks for transport between processes. A chunk is
// serialized, content-hashed and wrapped in a CBOR envelope so the receiver
// can verify what it got before decoding it.
package dist

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/loxbc/pkg/bytecode"
)

// ErrHashMismatch is returned when an envelope's body does not match its
// declared hash.
var ErrHashMismatch = errors.New("dist: hash mismatch")

// Envelope is the unit of chunk distribution. Body holds the chunk in the
// bytecode package's serialized format.
type Envelope struct {
	ID      uuid.UUID `cbor:"1,keyasint"`
	Name    string    `cbor:"2,keyasint"`
	Hash    [32]byte  `cbor:"3,keyasint"`
	Version uint16    `cbor:"4,keyasint"`
	Body    []byte    `cbor:"5,keyasint"`
}

// Seal serializes c and wraps it in a fresh envelope under name.
func Seal(name string, c *bytecode.Chunk) (*Envelope, error) {
	body, err := c.Serialize()
	if err != nil {
		return nil, fmt.Errorf("dist: serialize %s: %w", name, err)
	}
	return &Envelope{
		ID:      uuid.New(),
		Name:    name,
		Hash:    sha256.Sum256(body),
		Version: bytecode.BytecodeVersion,
		Body:    body,
	}, nil
}

// Verify checks the body against the declared hash.
func (e *Envelope) Verify() error {
	if computed := sha256.Sum256(e.Body); computed != e.Hash {
		return fmt.Errorf("%w: %s declared %x, computed %x", ErrHashMismatch, e.Name, e.Hash, computed)
	}
	return nil
}

// Open verifies the envelope and decodes its chunk.
func (e *Envelope) Open() (*bytecode.Chunk, error) {
	if err := e.Verify(); err != nil {
		return nil, err
	}
	c, err := bytecode.Deserialize(e.Body)
	if err != nil {
		return nil, fmt.Errorf("dist: decode %s: %w", e.Name, err)
	}
	return c, nil
}
