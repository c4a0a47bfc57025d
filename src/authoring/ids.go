package authoring

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() string
}

type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string {
	return f()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Produces prefix-1, prefix-2, and so on. Safe for concurrent use.
type SequenceGenerator struct {
	Prefix string

	m    sync.Mutex
	next int
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

func (g *SequenceGenerator) NewID() string {
	g.m.Lock()
	defer g.m.Unlock()

	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}
