package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mbauer83/ANTS/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int32
	SimTime   float64
	Ants      int
	Returning int
	FoodPiles int
	Trails    int
	FPS       int32
	Paused    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	// Title
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Ants: %d (%d returning) | Food piles: %d | Trail marks: %d",
			data.Ants, data.Returning, data.FoodPiles, data.Trails),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %.1fs | FPS: %d", data.Tick, data.SimTime, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	// Status
	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsSections describes the colony stats panel over telemetry.WindowStats.
func StatsSections() []SectionDescriptor {
	stats := func(data any) telemetry.WindowStats {
		s, _ := data.(telemetry.WindowStats)
		return s
	}
	return []SectionDescriptor{
		{
			ID:    "delivery",
			Title: "Delivery",
			Fields: []FieldDescriptor{
				{ID: "per_min", Label: "Per minute", Widget: WidgetText, Format: "%.2f",
					Getter: func(d any) float64 { return stats(d).DeliveredPerMin }},
				{ID: "total", Label: "Total", Widget: WidgetText, Format: "%.2f",
					Getter: func(d any) float64 { return stats(d).TotalDelivered }},
				{ID: "trips", Label: "Trips", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float64 { return float64(stats(d).Deliveries) }},
			},
		},
		{
			ID:    "load",
			Title: "Load",
			Fields: []FieldDescriptor{
				{ID: "carried_mean", Label: "Carried mean", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 5},
					Getter: func(d any) float64 { return stats(d).CarriedMean }},
				{ID: "carried_p90", Label: "Carried p90", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 5},
					Getter: func(d any) float64 { return stats(d).CarriedP90 }},
				{ID: "visible", Label: "Ants in view", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float64 { return stats(d).VisibleMean }},
			},
		},
		{
			ID:    "field",
			Title: "Field",
			Fields: []FieldDescriptor{
				{ID: "food_total", Label: "Food left", Widget: WidgetText, Format: "%.1f",
					Getter: func(d any) float64 { return stats(d).FoodTotal }},
				{ID: "depleted", Label: "Piles emptied", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float64 { return float64(stats(d).DepletedFood) }},
				{ID: "deposits", Label: "Deposits", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float64 { return float64(stats(d).Deposits) }},
				{ID: "failures", Label: "Ant failures", Widget: WidgetText, Format: "%.0f",
					Visible: func(d any) bool { return stats(d).AgentFailures > 0 },
					Getter:  func(d any) float64 { return float64(stats(d).AgentFailures) }},
			},
		},
	}
}

// StatsPanel renders descriptor-driven sections in a panel.
type StatsPanel struct {
	renderer *Renderer
	title    string
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewStatsPanel creates a panel for the given sections.
func NewStatsPanel(title string, sections []SectionDescriptor, x, y, width int32) *StatsPanel {
	return &StatsPanel{
		renderer: NewRenderer(),
		title:    title,
		sections: sections,
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *StatsPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel for data.
func (p *StatsPanel) Draw(data any) {
	r := p.renderer
	padding := r.Theme.Padding

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range p.sections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + padding
	y := p.y + padding
	rl.DrawText(p.title, x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range p.sections {
		y = r.DrawSection(x, y, sd, data, p.width-padding*2)
	}
}

// PerfPanel renders the tick phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Timing", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 16

	for _, ph := range telemetry.Phases() {
		pct := stats.PhasePct[ph]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph, stats.PhaseAvg[ph].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
