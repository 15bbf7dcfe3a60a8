package csvparse

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sungenyeint/money-tracker/internal/models"
)

// Header is the column layout read by ParseCSV. Column order in the input is
// free; names are matched case-insensitively.
var Header = []string{"Date", "Type", "Category", "Description", "Amount"}

// Row is one well-formed CSV record. Line is the 1-based record number,
// counting the header as line 1.
type Row struct {
	Line int
	models.TransactionFields
}

// ParseCSV parses transaction rows from a CSV string.
// It returns each well-formed row and a list of error messages for rows that
// could not be read. Business rules (category per type, positive amount, no
// future date) are left to the ledger.
func ParseCSV(content string) ([]Row, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) == 0 {
		return []Row{}, nil
	}

	headers := parseHeaders(records[0])
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, []string{fmt.Sprintf("Missing column(s): %s", strings.Join(missing, ", "))}
	}

	rows := []Row{}
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlank(record) {
			continue
		}
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string)
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		f, err := mapToFields(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		rows = append(rows, Row{Line: rowNum, TransactionFields: *f})
	}

	return rows, errors
}

// parseHeaders normalizes header names to their canonical spelling.
func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		headers[i] = h
		for _, known := range Header {
			if strings.EqualFold(h, known) {
				headers[i] = known
				break
			}
		}
	}
	return headers
}

func missingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range Header {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func mapToFields(row map[string]string) (*models.TransactionFields, error) {
	dateStr := row["Date"]
	if dateStr == "" {
		return nil, fmt.Errorf("missing Date")
	}
	if _, err := time.Parse(models.DateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("invalid Date format: %s", dateStr)
	}

	typ := models.TransactionType(strings.ToLower(row["Type"]))
	if !typ.Valid() {
		return nil, fmt.Errorf("invalid Type: %s", row["Type"])
	}

	catStr := row["Category"]
	if catStr == "" {
		return nil, fmt.Errorf("missing Category")
	}
	category := models.Category(catStr)

	description := row["Description"]
	if description == "" {
		return nil, fmt.Errorf("missing Description")
	}

	amountStr := row["Amount"]
	if amountStr == "" {
		return nil, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Amount: %s", amountStr)
	}

	return &models.TransactionFields{
		Type:        &typ,
		Amount:      &amount,
		Category:    &category,
		Description: &description,
		Date:        &dateStr,
	}, nil
}

// WriteCSV writes transactions in the ParseCSV layout followed by the
// server-assigned ID and CreatedAt columns.
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	writer := csv.NewWriter(w)

	header := append(append([]string{}, Header...), "ID", "CreatedAt")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range transactions {
		record := []string{
			t.Date,
			string(t.Type),
			string(t.Category),
			t.Description,
			t.Amount.StringFixed(2),
			t.ID,
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", t.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
