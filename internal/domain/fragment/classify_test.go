package fragment

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		f    Fragment
		want Type
	}{
		{"category image", Fragment{Metadata: map[string]string{"category": "Image"}, Body: "plain"}, Image},
		{"element_type table", Fragment{Metadata: map[string]string{"element_type": "Table"}}, Table},
		{"category beats keywords", Fragment{Metadata: map[string]string{"category": "Table"}, Body: "see diagram"}, Table},
		{"has_images flag", Fragment{Metadata: map[string]string{"has_images": "True"}}, Image},
		{"has_images false", Fragment{Metadata: map[string]string{"has_images": "false"}, Body: "run the command"}, Text},
		{"image keyword", Fragment{Body: "The Flow of signalling is shown"}, Image},
		{"fig keyword", Fragment{Body: "see Fig. 3"}, Image},
		{"two table keywords", Fragment{Body: "PARAMETER | meaning"}, Table},
		{"one table keyword", Fragment{Body: "set the value"}, Text},
		{"image wins over table", Fragment{Body: "table of parameter chart"}, Image},
		{"plain text", Fragment{Body: "ADD CELL: command adds a cell"}, Text},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.f); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	f := Fragment{Body: "parameter | value --- table", Metadata: map[string]string{"page": "4"}}
	first := Classify(f)
	for range 50 {
		if got := Classify(f); got != first {
			t.Fatalf("classification changed: %v then %v", first, got)
		}
	}
}

func TestBreakdown(t *testing.T) {
	fragments := []Fragment{
		{Body: "text one"},
		{Body: "text two"},
		{Body: "a diagram"},
		{Body: "parameter value"},
	}
	c := Breakdown(fragments)
	if c.Text != 2 || c.Image != 1 || c.Table != 1 {
		t.Errorf("Breakdown() = %+v", c)
	}
	if c.Total() != 4 {
		t.Errorf("Total() = %d", c.Total())
	}
}

func TestType_String(t *testing.T) {
	if Text.String() != "text" || Image.String() != "image" || Table.String() != "table" {
		t.Error("unexpected type names")
	}
}
