package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rahulbrandimpetus/wheelspin-backend/internal/models"
)

// ParsePrizeCSV reads a prize catalog from CSV.
// Required columns: id, label, percentage. Optional: cap (empty means unbounded), fallback.
// Rows keep the file order as catalog position.
func ParsePrizeCSV(r io.Reader) ([]*models.Prize, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idIdx := findColumnIndex(header, []string{"id", "prize_id", "handle"})
	labelIdx := findColumnIndex(header, []string{"label", "name", "prize"})
	pctIdx := findColumnIndex(header, []string{"percentage", "percent", "probability"})
	capIdx := findColumnIndex(header, []string{"cap", "max", "quantity"})
	fallbackIdx := findColumnIndex(header, []string{"fallback", "default"})
	if idIdx == -1 || labelIdx == -1 || pctIdx == -1 {
		return nil, fmt.Errorf("CSV must have id, label and percentage columns")
	}

	var prizes []*models.Prize
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		pct, err := strconv.ParseFloat(strings.TrimSpace(row[pctIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid percentage %q", line, row[pctIdx])
		}
		prize := &models.Prize{
			ID:       strings.TrimSpace(row[idIdx]),
			Label:    strings.TrimSpace(row[labelIdx]),
			Weight:   NormalizeWeight(pct),
			Position: len(prizes),
		}
		if prize.ID == "" || prize.Label == "" {
			return nil, fmt.Errorf("line %d: id and label are required", line)
		}
		if capIdx != -1 {
			if raw := strings.TrimSpace(row[capIdx]); raw != "" {
				limit, err := strconv.Atoi(raw)
				if err != nil || limit < 0 {
					return nil, fmt.Errorf("line %d: invalid cap %q", line, raw)
				}
				prize.Cap = models.IntPtr(limit)
				prize.Remaining = models.IntPtr(limit)
			}
		}
		if fallbackIdx != -1 {
			prize.Fallback = parseBool(row[fallbackIdx])
		}
		prizes = append(prizes, prize)
	}

	if len(prizes) == 0 {
		return nil, fmt.Errorf("CSV file is empty or has only header")
	}
	return prizes, nil
}

func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}
