package progress_test

import (
	"testing"

	"github.com/example/algoscope/internal/progress"
	"github.com/example/algoscope/internal/progress/progresstest"
)

func TestMemoryStore(t *testing.T) {
	progresstest.Run(t, func(t *testing.T) progress.Store {
		return progress.NewMemoryStore()
	})
}
