package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/ssargent/raffle/pkg/codec"
	"github.com/xuri/excelize/v2"
)

// csvRow mirrors one exported line
type csvRow struct {
	ID          string `csv:"id"`
	FirstName   string `csv:"firstName"`
	LastName    string `csv:"lastName"`
	Company     string `csv:"company"`
	Title       string `csv:"title"`
	Department  string `csv:"department"`
	Email       string `csv:"email"`
	City        string `csv:"city"`
	Country     string `csv:"country"`
	PhoneNumber string `csv:"phoneNumber"`
	Comment     string `csv:"comment"`
}

func (r csvRow) record() Record {
	return Record{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Company:     r.Company,
		Title:       r.Title,
		Department:  r.Department,
		Email:       r.Email,
		City:        r.City,
		Country:     r.Country,
		PhoneNumber: phoneFromText(r.PhoneNumber),
		Comment:     r.Comment,
	}
}

// ImportCSV reads lines in the ExportCSV format and upserts each record under
// its identifier. Lines with an empty identifier are created with a new one.
// It returns the number of records written.
func (s *Store) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = len(CSVHeader())

	// Exports carry no header line, so the column names are supplied here
	decoder, err := csvutil.NewDecoder(reader, CSVHeader()...)
	if err != nil {
		return 0, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	n := 0
	for {
		var row csvRow
		if err := decoder.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return n, fmt.Errorf("failed to decode CSV line %d: %w", n+1, err)
		}

		if err := s.importOne(row.ID, row.record()); err != nil {
			return n, err
		}
		n++
	}

	s.sugar.Infow("csv import finished", "records", n)
	return n, nil
}

// ImportXLSX reads the first sheet of a WriteXLSX spreadsheet and upserts each
// row like ImportCSV. The header row is skipped.
func (s *Store) ImportXLSX(r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("failed to read xlsx rows: %w", err)
	}

	n := 0
	for i, columns := range rows {
		if i == 0 {
			continue
		}
		// trailing empty cells are not returned
		if len(columns) > codec.FieldCount+1 {
			return n, fmt.Errorf("xlsx row %d has %d columns", i+1, len(columns))
		}
		padded := make([]string, codec.FieldCount+1)
		copy(padded, columns)

		record, err := codec.FromFields(padded[1:])
		if err != nil {
			return n, err
		}
		if err := s.importOne(padded[0], record); err != nil {
			return n, err
		}
		n++
	}

	s.sugar.Infow("xlsx import finished", "records", n)
	return n, nil
}

func (s *Store) importOne(id string, record Record) error {
	if id == "" {
		_, err := s.Create(record)
		return err
	}
	return s.Update(id, record)
}
