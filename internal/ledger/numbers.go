package ledger

import (
	"fmt"
	"math/rand"
)

// NumberSource issues IBANs and card numbers. It is seeded so a run is
// reproducible: the same bootstrap and command sequence always yields the
// same identifiers.
type NumberSource struct {
	rnd *rand.Rand
}

// NewNumberSource creates a generator from a fixed seed.
func NewNumberSource(seed int64) *NumberSource {
	return &NumberSource{rnd: rand.New(rand.NewSource(seed))}
}

// IBAN returns a fresh RO-style account identifier.
func (n *NumberSource) IBAN() string {
	return fmt.Sprintf("RO%02dMINT%016d", n.rnd.Intn(100), n.rnd.Int63n(1e16))
}

// CardNumber returns a fresh 16-digit card number.
func (n *NumberSource) CardNumber() string {
	return fmt.Sprintf("%016d", n.rnd.Int63n(1e16))
}
