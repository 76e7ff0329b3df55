//go:build glintdebug

package frame

import (
	"fmt"

	"github.com/dshills/glint/internal/renderer/core"
)

// assertPasses verifies the pass invariant: every background-pass
// record has the background mode and every foreground-pass record
// does not. Violations are programmer errors and panic in debug
// builds only.
func assertPasses(bg, fg []core.Record) {
	for i, rec := range bg {
		if !rec.Mode.IsBackground() {
			panic(fmt.Sprintf("frame: %s record at background index %d", rec.Mode, i))
		}
	}
	for i, rec := range fg {
		if rec.Mode.IsBackground() {
			panic(fmt.Sprintf("frame: background record at foreground index %d", i))
		}
	}
}
