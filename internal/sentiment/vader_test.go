package sentiment

import (
	"context"
	"testing"
)

func TestVaderClassifier_ClassifyGeneral(t *testing.T) {
	v := NewVaderClassifier()

	tests := []struct {
		text  string
		label string
	}{
		{text: "I love this phone, it is great and wonderful!", label: "POSITIVE"},
		{text: "Terrible product. Awful, it broke and I hate it.", label: "NEGATIVE"},
	}
	for _, tt := range tests {
		p, err := v.ClassifyGeneral(context.Background(), tt.text)
		if err != nil {
			t.Fatalf("ClassifyGeneral(%q) error = %v", tt.text, err)
		}
		if p.Label != tt.label {
			t.Errorf("ClassifyGeneral(%q) label = %s, want %s", tt.text, p.Label, tt.label)
		}
		if p.Score < 0.5 || p.Score > 1 {
			t.Errorf("ClassifyGeneral(%q) score = %v, want within [0.5, 1]", tt.text, p.Score)
		}
	}
}

func TestVaderClassifier_ClassifyAspect(t *testing.T) {
	v := NewVaderClassifier()
	text := "The camera is wonderful and amazing. The battery is terrible and awful."

	tests := []struct {
		aspect string
		label  string
	}{
		{aspect: "camera", label: "positive"},
		{aspect: "Battery", label: "negative"},
	}
	for _, tt := range tests {
		p, err := v.ClassifyAspect(context.Background(), text, tt.aspect)
		if err != nil {
			t.Fatalf("ClassifyAspect(%q) error = %v", tt.aspect, err)
		}
		if p.Label != tt.label {
			t.Errorf("ClassifyAspect(%q) label = %s, want %s", tt.aspect, p.Label, tt.label)
		}
	}

	p, err := v.ClassifyAspect(context.Background(), "The box contains a charger.", "charger")
	if err != nil {
		t.Fatalf("ClassifyAspect() error = %v", err)
	}
	if p.Label != "neutral" || p.Score != 1 {
		t.Errorf("ClassifyAspect(neutral text) = %+v, want neutral with score 1", p)
	}
}

func TestConvertMarkdownToText(t *testing.T) {
	in := "**Great** [store](https://example.com/x) see https://example.com"
	if got, want := ConvertMarkdownToText(in), "Great store see"; got != want {
		t.Errorf("ConvertMarkdownToText() = %q, want %q", got, want)
	}
}
