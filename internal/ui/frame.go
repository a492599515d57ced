package ui

import (
	"fmt"
	"time"
)

// StartFrame announces a remote command before its output is relayed:
// "  $ cmake --build /src/_cport".
func (u *UI) StartFrame(cmdline string) {
	u.frameStart = u.now()
	u.errLine("  $ "+cmdline, u.errRenderer.NewStyle().Faint(true))
}

// EndFrame closes the current frame with the command's wall time.
func (u *UI) EndFrame() {
	elapsed := u.now().Sub(u.frameStart).Round(100 * time.Millisecond)
	u.errLine(fmt.Sprintf("  --- %s", elapsed), u.errRenderer.NewStyle().Faint(true))
}
