package clients

import (
	"testing"

	"github.com/knights-analytics/hugot/pipelines"
)

func TestTopClassification(t *testing.T) {
	output := &pipelines.TextClassificationOutput{
		ClassificationOutputs: [][]pipelines.ClassificationOutput{{
			{Label: "NEGATIVE", Score: 0.2},
			{Label: "POSITIVE", Score: 0.8},
		}},
	}

	got, err := topClassification(output)
	if err != nil {
		t.Fatalf("topClassification() error = %v", err)
	}
	if got.Label != "POSITIVE" || got.Score < 0.79 || got.Score > 0.81 {
		t.Errorf("topClassification() = %+v, want POSITIVE ~0.8", got)
	}
}

func TestTopClassification_Empty(t *testing.T) {
	if _, err := topClassification(&pipelines.TextClassificationOutput{}); err == nil {
		t.Error("expected an error for empty output")
	}
}
