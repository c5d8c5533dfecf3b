package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Writer serializes batch results. Formats: "jsonl" streams one JSON object
// per result as it arrives; "summary" accumulates and emits aggregate
// statistics on Close.
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	format  string
	encoder *json.Encoder
	logger  *zerolog.Logger

	total    int
	failed   int
	scoreSum float64
	minScore float64
	maxScore float64
}

func NewWriter(out io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case "jsonl", "summary":
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	return &Writer{
		out:      out,
		format:   format,
		encoder:  json.NewEncoder(out),
		logger:   logger,
		minScore: -1,
	}, nil
}

func (w *Writer) Write(record OutputRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.total++
	if record.Error != "" {
		w.failed++
	} else if record.Result != nil {
		score := record.Result.OverallScore
		w.scoreSum += score
		if w.minScore < 0 || score < w.minScore {
			w.minScore = score
		}
		if score > w.maxScore {
			w.maxScore = score
		}
	}

	if w.format == "jsonl" {
		return w.encoder.Encode(record)
	}
	return nil
}

// Summary is the aggregate emitted by the "summary" format.
type Summary struct {
	Total        int     `json:"total"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	AverageScore float64 `json:"average_score"`
	MinScore     float64 `json:"min_score"`
	MaxScore     float64 `json:"max_score"`
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.format != "summary" {
		return nil
	}

	summary := Summary{
		Total:     w.total,
		Succeeded: w.total - w.failed,
		Failed:    w.failed,
		MaxScore:  w.maxScore,
	}
	if succeeded := w.total - w.failed; succeeded > 0 {
		summary.AverageScore = w.scoreSum / float64(succeeded)
	}
	if w.minScore >= 0 {
		summary.MinScore = w.minScore
	}

	w.logger.Info().
		Int("total", summary.Total).
		Int("failed", summary.Failed).
		Float64("average_score", summary.AverageScore).
		Msg("batch summary")

	return w.encoder.Encode(summary)
}
