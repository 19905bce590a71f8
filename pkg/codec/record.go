package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// SchemaVersion is the version tag written in front of every encoded record.
	// Version 1 is the ten-field layout that includes Department.
	SchemaVersion byte = 1

	// FieldCount is the number of fields a version 1 record carries.
	FieldCount = 10

	headerSize = 2 // Version(1) + FieldCount(1)
	lenSize    = 4 // per-field length prefix
)

// ErrCorruptRecord is returned when bytes cannot be decoded into a Record
var ErrCorruptRecord = errors.New("corrupt record")

// Record is a single signup. All fields are free-form text.
type Record struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Company     string `json:"company"`
	Title       string `json:"title"`
	Department  string `json:"department"`
	Email       string `json:"email"`
	City        string `json:"city"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phoneNumber"`
	Comment     string `json:"comment"`
}

// Fields returns the record's values in declared order
func (r Record) Fields() []string {
	return []string{
		r.FirstName,
		r.LastName,
		r.Company,
		r.Title,
		r.Department,
		r.Email,
		r.City,
		r.Country,
		r.PhoneNumber,
		r.Comment,
	}
}

// FieldNames returns the field names in declared order
func FieldNames() []string {
	return []string{
		"firstName",
		"lastName",
		"company",
		"title",
		"department",
		"email",
		"city",
		"country",
		"phoneNumber",
		"comment",
	}
}

// FromFields builds a record from values in declared order
func FromFields(fields []string) (Record, error) {
	if len(fields) != FieldCount {
		return Record{}, fmt.Errorf("%w: expected %d fields, got %d", ErrCorruptRecord, FieldCount, len(fields))
	}
	return Record{
		FirstName:   fields[0],
		LastName:    fields[1],
		Company:     fields[2],
		Title:       fields[3],
		Department:  fields[4],
		Email:       fields[5],
		City:        fields[6],
		Country:     fields[7],
		PhoneNumber: fields[8],
		Comment:     fields[9],
	}, nil
}

// FullName joins first and last name
func (r Record) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record into the versioned binary format
// Format: [Version(1)][FieldCount(1)] then per field [Len(4)][Bytes]
func (c *RecordCodec) Encode(r Record) ([]byte, error) {
	fields := r.Fields()

	size := headerSize
	for i, f := range fields {
		if uint64(len(f)) > math.MaxUint32 {
			return nil, fmt.Errorf("field %s too large: %d bytes", FieldNames()[i], len(f))
		}
		size += lenSize + len(f)
	}

	buf := make([]byte, size)
	buf[0] = SchemaVersion
	buf[1] = byte(len(fields))

	off := headerSize
	for _, f := range fields {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(f)))
		off += lenSize
		off += copy(buf[off:], f)
	}

	return buf, nil
}

// Decode deserializes bytes produced by Encode
func (c *RecordCodec) Decode(data []byte) (Record, error) {
	if len(data) < headerSize {
		return Record{}, fmt.Errorf("%w: data too short for header", ErrCorruptRecord)
	}
	if data[0] != SchemaVersion {
		return Record{}, fmt.Errorf("%w: unsupported schema version %d", ErrCorruptRecord, data[0])
	}
	count := int(data[1])
	if count != FieldCount {
		return Record{}, fmt.Errorf("%w: expected %d fields, header declares %d", ErrCorruptRecord, FieldCount, count)
	}

	fields := make([]string, 0, count)
	off := headerSize
	for i := 0; i < count; i++ {
		if len(data)-off < lenSize {
			return Record{}, fmt.Errorf("%w: truncated length of field %d", ErrCorruptRecord, i)
		}
		n := binary.LittleEndian.Uint32(data[off:])
		off += lenSize
		if uint64(len(data)-off) < uint64(n) {
			return Record{}, fmt.Errorf("%w: field %d declares %d bytes, %d remain", ErrCorruptRecord, i, n, len(data)-off)
		}
		fields = append(fields, string(data[off:off+int(n)]))
		off += int(n)
	}

	if off != len(data) {
		return Record{}, fmt.Errorf("%w: %d trailing bytes", ErrCorruptRecord, len(data)-off)
	}

	return FromFields(fields)
}
