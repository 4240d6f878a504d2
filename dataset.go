package scam_detector

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DatasetRecord is one message read from a CSV dataset.
type DatasetRecord struct {
	Index         int
	Text          string
	ExpectedLabel string
}

// BatchResult is written as one JSON line per classified record.
type BatchResult struct {
	Index         int                  `json:"index"`
	Text          string               `json:"text"`
	ExpectedLabel string               `json:"expected_label,omitempty"`
	Result        *ScamDetectionOutput `json:"result,omitempty"`
	Error         string               `json:"error,omitempty"`
}

// BatchSummary counts the outcome of a batch run. Matched only counts records
// that carried an expected label.
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Labelled  int `json:"labelled"`
	Matched   int `json:"matched"`
}

// ResolveDatasetPath returns name if it exists, otherwise root/name.
func ResolveDatasetPath(name, root string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("dataset name is empty")
	}

	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	if root != "" && !filepath.IsAbs(name) {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("dataset %q not found: %w", name, fs.ErrNotExist)
}

// ReadDataset reads a CSV file with a header row. The first header matching
// one of textColumns holds the message; labelColumn is optional.
func ReadDataset(path string, textColumns []string, labelColumn string) ([]DatasetRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readDataset(f, textColumns, labelColumn)
}

func readDataset(r io.Reader, textColumns []string, labelColumn string) ([]DatasetRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := columns[name]; !ok {
			columns[name] = i
		}
	}

	textIdx := -1
	for _, col := range textColumns {
		if idx, ok := columns[strings.ToLower(col)]; ok {
			textIdx = idx
			break
		}
	}
	if textIdx == -1 {
		return nil, fmt.Errorf("no text column found, looked for %s in %s", strings.Join(textColumns, ", "), strings.Join(header, ", "))
	}

	labelIdx := -1
	if labelColumn != "" {
		if idx, ok := columns[strings.ToLower(labelColumn)]; ok {
			labelIdx = idx
		}
	}

	var records []DatasetRecord
	row := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row %d: %w", row+1, err)
		}
		row++

		if textIdx >= len(fields) || strings.TrimSpace(fields[textIdx]) == "" {
			continue
		}

		record := DatasetRecord{Index: row, Text: fields[textIdx]}
		if labelIdx >= 0 && labelIdx < len(fields) {
			record.ExpectedLabel = strings.TrimSpace(fields[labelIdx])
		}
		records = append(records, record)
	}

	return records, nil
}

// RunBatch classifies records one after another and writes a JSON line per
// record to w. Per-record failures are recorded and the run continues.
func RunBatch(ctx context.Context, det Classifier, records []DatasetRecord, strategy string, w io.Writer, logger *zap.Logger) (BatchSummary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var summary BatchSummary
	enc := json.NewEncoder(w)

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Total++
		result := BatchResult{
			Index:         record.Index,
			Text:          record.Text,
			ExpectedLabel: record.ExpectedLabel,
		}

		output, err := det.Detect(ctx, record.Text, strategy)
		if err != nil {
			summary.Failed++
			result.Error = err.Error()
			logger.Warn("record failed", zap.Int("index", record.Index), zap.Error(err))
		} else {
			summary.Succeeded++
			result.Result = output
			if record.ExpectedLabel != "" {
				summary.Labelled++
				if labelsMatch(record.ExpectedLabel, output.Label) {
					summary.Matched++
				}
			}
		}

		if err := enc.Encode(result); err != nil {
			return summary, fmt.Errorf("failed to write result for record %d: %w", record.Index, err)
		}
	}

	logger.Info("batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("matched", summary.Matched))

	return summary, nil
}

func labelsMatch(expected string, got Label) bool {
	normalize := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, "_", " ")
		return strings.ReplaceAll(s, "-", " ")
	}
	return normalize(expected) == normalize(string(got))
}
