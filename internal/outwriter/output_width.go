package outwriter

import (
	"os"

	"github.com/huangsam/timesplit/internal/contract"
	"golang.org/x/term"
)

// getMaxTableBranchWidth calculates the maximum width for branch names in table output
// based on terminal width and the fixed columns around them.
func getMaxTableBranchWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	available := termWidth - fixedWidth
	if available < 12 {
		return 12
	}
	if available > 60 {
		return 60
	}
	return available
}
