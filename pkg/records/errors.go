package records

import (
	"errors"

	"github.com/ssargent/raffle/pkg/codec"
)

var (
	// ErrNotFound is returned when no record is stored under an identifier
	ErrNotFound = errors.New("record not found")
	// ErrEmptyStore is returned by PickRandom when there is nothing to draw from
	ErrEmptyStore = errors.New("no records to draw from")
	// ErrInvalidID is returned for an empty identifier
	ErrInvalidID = errors.New("invalid record id")
	// ErrCellTooLong is returned by WriteXLSX for a field longer than a
	// spreadsheet cell can hold
	ErrCellTooLong = errors.New("field too long for a spreadsheet cell")
	// ErrCorruptRecord is returned when a stored value cannot be decoded
	ErrCorruptRecord = codec.ErrCorruptRecord
)
