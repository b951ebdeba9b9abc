package memory_test

import (
	"testing"

	"github.com/warp/payroll-engine/store/memory"
	"github.com/warp/payroll-engine/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		return memory.New()
	})
}
