package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/invoicelab/insights-agent/internal/models"
)

// InputRecord is one parsed JSONL line. Error carries a per-line parse
// failure so a single bad line never aborts the whole batch.
type InputRecord struct {
	LineNumber int
	Request    models.EvaluationRequest
	Error      error
}

// Reader streams evaluation requests from a JSONL source. Blank lines are
// skipped but still counted toward line numbers.
type Reader struct {
	source io.Reader
	logger *zerolog.Logger
}

func NewReader(source io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		source: source,
		logger: logger,
	}
}

func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	ch := make(chan InputRecord)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r.source)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}

			var request models.EvaluationRequest
			if err := json.Unmarshal([]byte(line), &request); err != nil {
				record.Error = fmt.Errorf("line %d: invalid JSON: %w", lineNumber, err)
			} else {
				if request.RequestID == "" {
					request.RequestID = uuid.NewString()
				}
				record.Request = request
			}

			select {
			case ch <- record:
			case <-ctx.Done():
				r.logger.Warn().Int("line", lineNumber).Msg("reader cancelled")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			select {
			case ch <- InputRecord{LineNumber: lineNumber, Error: fmt.Errorf("read failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return ch
}
