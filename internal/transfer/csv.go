package transfer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"plate-registry/internal/model"
)

var exportHeader = []string{"PLATE", "COMPANY", "ASSOCIATION", "REGISTERED AT", "REGISTERED BY"}

// ReadRows decodes import rows from CSV: plate, company, association
// per line. Rows with a blank plate cell are skipped, mirroring how
// spreadsheet sources pad empty lines. A header row is recognized by
// its PLATE cell and skipped too.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []Row
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++

		cell := func(i int) string {
			if i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		plateCell := cell(0)
		if plateCell == "" || (line == 1 && strings.EqualFold(plateCell, "plate")) {
			continue
		}

		rows = append(rows, Row{
			Plate:       plateCell,
			Company:     cell(1),
			Association: cell(2),
			Line:        line,
		})
	}

	return rows, nil
}

// WriteRecords serializes the export set as CSV with a header row.
func WriteRecords(w io.Writer, records []model.PlateRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range records {
		row := []string{
			rec.Plate,
			rec.Company,
			rec.Association,
			rec.RegisteredAt.Format(time.RFC3339),
			rec.RegisteredBy,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
