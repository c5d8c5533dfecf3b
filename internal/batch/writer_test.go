package batch

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/invoicelab/insights-agent/internal/models"
)

func TestWriter_RejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewWriter(&buf, "csv", newTestLogger()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriter_JSONL(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, "jsonl", newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	records := []OutputRecord{
		{ID: "1", Result: &models.EvaluationResult{OverallScore: 90}},
		{ID: "2", Error: "image not found: b.png"},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}

	var first OutputRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("failed to parse first line: %v", err)
	}
	if first.Result == nil || first.Result.OverallScore != 90 {
		t.Errorf("unexpected first record: %+v", first)
	}

	var second OutputRecord
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("failed to parse second line: %v", err)
	}
	if second.Error == "" {
		t.Error("expected error to be serialized for failed record")
	}
}

func TestWriter_Summary(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewWriter(&buf, "summary", newTestLogger())
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	records := []OutputRecord{
		{ID: "1", Result: &models.EvaluationResult{OverallScore: 80}},
		{ID: "2", Result: &models.EvaluationResult{OverallScore: 60}},
		{ID: "3", Error: "evaluation failed"},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	var summary Summary
	if err := json.Unmarshal(buf.Bytes(), &summary); err != nil {
		t.Fatalf("failed to parse summary: %v", err)
	}

	if summary.Total != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.AverageScore != 70 {
		t.Errorf("expected average=70, got %f", summary.AverageScore)
	}
	if summary.MinScore != 60 || summary.MaxScore != 80 {
		t.Errorf("unexpected min/max: %+v", summary)
	}

	// Summary format emits only the aggregate, not per-record lines.
	if strings.Count(strings.TrimSpace(buf.String()), "\n") != 0 {
		t.Errorf("expected a single summary object, got: %s", buf.String())
	}
}
