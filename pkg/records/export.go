package records

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ssargent/raffle/pkg/codec"
	"github.com/xuri/excelize/v2"
)

const (
	csvSeparator = ";"
	xlsxSheet    = "Sheet1"
)

// CSVHeader names the exported columns: the identifier, then the record fields
func CSVHeader() []string {
	return append([]string{"id"}, codec.FieldNames()...)
}

// ExportCSV renders every entry as one line: the identifier followed by the
// record fields, each double-quoted and joined by semicolons. Lines are joined
// by "\n" with no trailing newline.
func (s *Store) ExportCSV() (string, error) {
	var sb strings.Builder
	if err := s.WriteCSV(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteCSV streams the ExportCSV format to w
func (s *Store) WriteCSV(w io.Writer) error {
	entries, err := s.List()
	if err != nil {
		return err
	}

	for i, entry := range entries {
		line := csvLine(entry)
		if i > 0 {
			line = "\n" + line
		}
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	return nil
}

func csvLine(entry Entry) string {
	record := entry.Record
	record.PhoneNumber = phoneAsText(record.PhoneNumber)

	fields := append([]string{entry.ID}, record.Fields()...)
	for i, f := range fields {
		fields[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(fields, csvSeparator)
}

// phoneAsText wraps a phone number as ="..." so spreadsheets keep it as text
// instead of parsing it as a number and dropping leading zeros.
func phoneAsText(phone string) string {
	if phone == "" {
		return ""
	}
	return `="` + phone + `"`
}

// phoneFromText reverses phoneAsText, leaving plain values untouched
func phoneFromText(value string) string {
	if len(value) >= 3 && strings.HasPrefix(value, `="`) && strings.HasSuffix(value, `"`) {
		return value[2 : len(value)-1]
	}
	return value
}

// WriteXLSX writes all entries as a spreadsheet with a header row. Every cell,
// phone numbers included, is stored as a string. A field longer than
// excelize.TotalCellChars fails with ErrCellTooLong instead of being cut.
func (s *Store) WriteXLSX(w io.Writer) error {
	entries, err := s.List()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := setRow(f, 1, CSVHeader()); err != nil {
		return err
	}
	for i, entry := range entries {
		row := append([]string{entry.ID}, entry.Record.Fields()...)
		for col, value := range row {
			if utf8.RuneCountInString(value) > excelize.TotalCellChars {
				return fmt.Errorf("%w: record %s %s", ErrCellTooLong, entry.ID, CSVHeader()[col])
			}
		}
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
