// Package codec provides serialization and deserialization of signup records.
//
// A Record is the persisted signup entity: ten free-form text fields in a
// fixed declared order. The codec turns a Record into an opaque byte blob that
// storage engines keep under the record's identifier.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure:
//
//	[Version(1)][FieldCount(1)] { [Len(4)][Bytes] } x FieldCount
//
// Fields:
//   - Version: schema version tag, currently 1
//   - FieldCount: number of fields that follow, 10 for version 1
//   - Len: 32-bit unsigned little-endian byte length of the field
//   - Bytes: the field's text, copied verbatim
//
// Fields appear in this order:
//
//	firstName, lastName, company, title, department,
//	email, city, country, phoneNumber, comment
//
// Empty strings are encoded as a zero length with no bytes, so every field is
// always present.
//
// # Versioning
//
// The version byte exists so a future schema change (adding, removing or
// reordering fields) cannot be silently misread by an older decoder. A decoder
// rejects any version it does not know.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	data, err := c.Encode(codec.Record{FirstName: "Ada", LastName: "Lovelace"})
//	if err != nil {
//	    return err
//	}
//
//	rec, err := c.Decode(data)
//	if errors.Is(err, codec.ErrCorruptRecord) {
//	    // bytes were truncated, malformed or of an unknown version
//	}
//
// # Error Handling
//
// Decode wraps ErrCorruptRecord for:
//   - data shorter than the header
//   - an unknown schema version
//   - a field count other than FieldCount
//   - a length prefix pointing past the end of the data
//   - trailing bytes after the last field
//
// # Thread Safety
//
// RecordCodec holds no state and is safe for concurrent use. Record is a plain
// value type.
package codec
