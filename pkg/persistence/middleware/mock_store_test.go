package middleware_test

import (
	"github.com/aretw0/recipient/pkg/adapters/memory"
	"github.com/aretw0/recipient/pkg/ports"
)

func NewMockStore(records ...*ports.Record) *memory.Store {
	return memory.NewStore(memory.WithSeed(records...))
}

var _ ports.RecipientStore = (*memory.Store)(nil)
