package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a chapter progress bar like [████░░░░] 4/11.
// The bar turns green once the chapter is finished.
func RenderProgress(done, total, width int) string {
	if width < 2 {
		width = 2
	}
	if total <= 0 {
		return fmt.Sprintf("[%s] 0/0", strings.Repeat(emptyBlock, width))
	}
	done = min(max(done, 0), total)

	filled := done * width / total
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleYellow
	if done == total {
		style = StyleGreen
	} else if done == 0 {
		style = StyleDim
	}
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), done, total)
}
