package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsResult reports what the user did in the controls panel this frame.
type ControlsResult struct {
	TogglePause bool
	PaintAmount float64
}

// ControlsPanel renders the pause button, overlay toggles and the food brush slider.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32 // as last drawn
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Draw renders the controls and returns the user's actions.
// The pause button is drawn even when the panel is hidden.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, paused bool, paintAmount float64) ControlsResult {
	res := ControlsResult{PaintAmount: paintAmount}
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight + 6

	label := "Pause"
	if paused {
		label = "Run"
	}
	x, y := float32(c.x), float32(c.y)
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: float32(c.width), Height: 28}, label) {
		res.TogglePause = true
	}
	c.height = 28
	if !c.visible {
		return res
	}

	y += 28 + float32(padding)
	all := overlays.All()
	panelHeight := int32(len(all)+len(overlays.Categories()))*lineHeight + padding*2 + 56
	r.DrawPanel(c.x, int32(y), c.width, panelHeight)
	c.height = 28 + padding + panelHeight
	y += float32(padding)

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), c.x+padding, int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(lineHeight)
		for _, desc := range overlays.ByCategory(category) {
			mark := "[ ]"
			if overlays.IsEnabled(desc.ID) {
				mark = "[x]"
			}
			text := fmt.Sprintf("%s %s (%s)", mark, desc.Name, desc.KeyLabel)
			bounds := rl.Rectangle{X: float32(c.x + padding), Y: y, Width: float32(c.width - padding*2), Height: float32(lineHeight - 4)}
			if gui.Button(bounds, text) {
				overlays.Toggle(desc.ID)
			}
			y += float32(lineHeight)
		}
	}

	y += 4
	rl.DrawText(fmt.Sprintf("Food brush: %.2f", paintAmount), c.x+padding, int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(r.Theme.LineHeight)
	amount := gui.SliderBar(
		rl.Rectangle{X: float32(c.x + padding), Y: y, Width: float32(c.width - padding*2), Height: 16},
		"", "",
		float32(paintAmount), 0.1, 2.0,
	)
	res.PaintAmount = float64(amount)
	return res
}

// Contains reports whether a screen point falls on the panel as last drawn.
func (c *ControlsPanel) Contains(x, y float32) bool {
	return x >= float32(c.x) && x <= float32(c.x+c.width) &&
		y >= float32(c.y) && y <= float32(c.y+c.height)
}

// categoryLabel returns a display label for an overlay category.
func categoryLabel(category string) string {
	switch category {
	case "field":
		return "Field"
	case "colony":
		return "Colony"
	case "panels":
		return "Panels"
	default:
		return category
	}
}
