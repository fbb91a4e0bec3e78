package memory_test

import (
	"testing"

	"github.com/cory-johannsen/taberneiros/internal/storage"
	"github.com/cory-johannsen/taberneiros/internal/storage/memory"
	"github.com/cory-johannsen/taberneiros/internal/storage/storagetest"
)

func TestStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return memory.New()
	})
}
