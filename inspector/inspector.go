// Package inspector shows the live state of one selected ant.
package inspector

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/game"
)

// Panel dimensions
const (
	PanelWidth   = 260
	PanelPadding = 10
	HeaderHeight = 30
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
)

// Inspector tracks the selected ant by ID, so the selection survives
// across snapshots.
type Inspector struct {
	selected    uint32
	hasSelected bool
	panelX      int32
	panelY      int32
}

// NewInspector creates an inspector with its panel at (x, y).
func NewInspector(x, y int32) *Inspector {
	return &Inspector{panelX: x, panelY: y}
}

// SetPosition moves the panel.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.panelX = x
	ins.panelY = y
}

// Select picks the ant nearest to (wx, wy) within pickRadius world units,
// or clears the selection if there is none.
func (ins *Inspector) Select(ants []game.AntView, wx, wy, pickRadius float64) {
	best := pickRadius * pickRadius
	found := false
	for i := range ants {
		dx := ants[i].X - wx
		dy := ants[i].Y - wy
		if d := dx*dx + dy*dy; d <= best {
			best = d
			ins.selected = ants[i].ID
			found = true
		}
	}
	ins.hasSelected = found
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the view of the selected ant in ants, if any.
func (ins *Inspector) Selected(ants []game.AntView) (*game.AntView, bool) {
	if !ins.hasSelected {
		return nil, false
	}
	for i := range ants {
		if ants[i].ID == ins.selected {
			return &ants[i], true
		}
	}
	return nil, false
}

// HitClose reports whether a screen point is on the close button.
func (ins *Inspector) HitClose(sx, sy float32) bool {
	if !ins.hasSelected {
		return false
	}
	closeX := float32(ins.panelX + PanelWidth - 25)
	closeY := float32(ins.panelY + 5)
	return sx >= closeX && sx <= closeX+20 && sy >= closeY && sy <= closeY+20
}

// Draw renders the panel for ant.
func (ins *Inspector) Draw(ant *game.AntView) {
	fields := ExtractFields(ant)

	panelHeight := int32(HeaderHeight + 2*PanelPadding)
	for _, f := range fields {
		panelHeight += FieldHeight(f)
	}

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(fmt.Sprintf("ANT #%d", ant.ID), ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	x := ins.panelX + PanelPadding
	y := ins.panelY + HeaderHeight + PanelPadding
	for _, f := range fields {
		y += DrawField(x, y, f)
	}
}
