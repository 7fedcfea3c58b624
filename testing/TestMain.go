package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("FINBOARD_TEST_MODE", "1")
		if os.Getenv("REPORT_CACHE_TTL") == "" {
			_ = os.Setenv("REPORT_CACHE_TTL", "0")
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain forces test mode for packages that delegate to it.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
