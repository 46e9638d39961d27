package testutil

import (
	"sync"
	"testing"

	"github.com/dalemusser/studysphere/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var bootMu sync.Mutex

// BootTemplates registers the shared templates and boots an engine over
// every set registered so far (feature packages register in init), so
// handler tests render real pages.
func BootTemplates(t *testing.T) {
	t.Helper()
	bootMu.Lock()
	defer bootMu.Unlock()

	resources.LoadSharedTemplates()
	logger := zap.NewNop()
	eng := templates.New(false)
	if err := eng.Boot(logger); err != nil {
		t.Fatalf("boot templates: %v", err)
	}
	templates.UseEngine(eng, logger)
}
