package netsnake

import "github.com/vovakirdan/netsnake/internal/core"

// CellWidth is the number of terminal columns per grid cell.
const CellWidth = 2

// BoardSize returns the width and height in terminal cells needed to render
// a grid, including the border.
func BoardSize(gridSize int) (int, int) {
	return gridSize*CellWidth + 2, gridSize + 2
}

// Render draws the board with its border into dst. The border is drawn in
// red while a degraded-move alert is active.
func (s Snapshot) Render(dst *core.Screen) {
	dst.Clear()

	w, h := BoardSize(s.GridSize)
	border := core.ColorGray
	if s.Alerting {
		border = core.ColorRed
	}
	dst.DrawBox(0, 0, w, h, border)

	// Ghosts first so a live segment on the same cell wins
	for _, g := range s.Ghosts {
		s.plot(dst, g, '░', core.ColorGray)
	}
	s.plot(dst, s.Food, '●', core.ColorYellow)
	for i := len(s.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			s.plot(dst, s.Snake[i], '█', core.ColorBrightBlue)
			continue
		}
		s.plot(dst, s.Snake[i], '█', core.ColorGreen)
	}

	if s.Over() {
		msg := "GAME OVER"
		dst.DrawText((w-len(msg))/2, h/2, msg, core.ColorBrightRed)
	}
}

func (s Snapshot) plot(dst *core.Screen, p core.Point, r rune, c core.Color) {
	if !p.In(s.GridSize) {
		return
	}
	x := 1 + p.X*CellWidth
	y := 1 + p.Y
	for i := 0; i < CellWidth; i++ {
		dst.Set(x+i, y, r, c)
	}
}
