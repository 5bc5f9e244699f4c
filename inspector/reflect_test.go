package inspector

import (
	"testing"

	"github.com/mbauer83/ANTS/components"
	"github.com/mbauer83/ANTS/game"
)

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag     string
		widget  Widget
		options map[string]string
	}{
		{"", WidgetAuto, map[string]string{}},
		{"bar", WidgetBar, map[string]string{}},
		{"bar,max:5", WidgetBar, map[string]string{"max": "5"}},
		{"label,fmt:%.1f", WidgetLabel, map[string]string{"fmt": "%.1f"}},
		{"skip", WidgetSkip, map[string]string{}},
		{"unknown", WidgetAuto, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			w, opts := ParseTag(tt.tag)
			if w != tt.widget {
				t.Errorf("widget = %v, want %v", w, tt.widget)
			}
			if len(opts) != len(tt.options) {
				t.Fatalf("options = %v, want %v", opts, tt.options)
			}
			for k, v := range tt.options {
				if opts[k] != v {
					t.Errorf("option %q = %q, want %q", k, opts[k], v)
				}
			}
		})
	}
}

func TestExtractFieldsAntView(t *testing.T) {
	view := game.AntView{ID: 3, Mode: components.ModeReturn, Carried: 2.5, Load: 0.5, Blind: true}
	fields := ExtractFields(&view)

	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	for _, hidden := range []string{"Radius", "HalfAngle"} {
		if _, ok := byName[hidden]; ok {
			t.Errorf("%s should be skipped", hidden)
		}
	}
	if f := byName["Heading"]; f.Widget != WidgetAngle {
		t.Errorf("Heading widget = %v, want angle", f.Widget)
	}
	if f := byName["Load"]; f.Widget != WidgetBar {
		t.Errorf("Load widget = %v, want bar", f.Widget)
	}
	if f := byName["Blind"]; f.Widget != WidgetBool || f.Value != true {
		t.Errorf("Blind = %+v, want bool widget with true", f)
	}
	if got := FormatValue(byName["Mode"].Value, ""); got != "return" {
		t.Errorf("Mode formats as %q, want return", got)
	}
	if got := FormatValue(byName["Carried"].Value, byName["Carried"].Options["fmt"]); got != "2.500" {
		t.Errorf("Carried formats as %q, want 2.500", got)
	}
}

func TestGetMax(t *testing.T) {
	if got := GetMax(nil); got != 1 {
		t.Errorf("default max = %f, want 1", got)
	}
	if got := GetMax(map[string]string{"max": "5"}); got != 5 {
		t.Errorf("max = %f, want 5", got)
	}
	if got := GetMax(map[string]string{"max": "-2"}); got != 1 {
		t.Errorf("negative max = %f, want fallback 1", got)
	}
}
