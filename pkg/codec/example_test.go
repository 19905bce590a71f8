package codec_test

import (
	"errors"
	"fmt"
	"log"

	"github.com/ssargent/raffle/pkg/codec"
)

// ExampleRecordCodec_basic demonstrates basic record encoding and decoding
func ExampleRecordCodec_basic() {
	c := codec.NewRecordCodec()

	encoded, err := c.Encode(codec.Record{FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes, version %d\n", len(encoded), encoded[0])

	record, err := c.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Name: %s\n", record.FullName())
	fmt.Printf("Comment empty: %t\n", record.Comment == "")

	// Output:
	// Encoded 53 bytes, version 1
	// Name: Ada Lovelace
	// Comment empty: true
}

// ExampleRecordCodec_errorHandling demonstrates error handling
func ExampleRecordCodec_errorHandling() {
	c := codec.NewRecordCodec()

	_, err := c.Decode([]byte{0x01, 0x02, 0x03})
	fmt.Println(errors.Is(err, codec.ErrCorruptRecord))

	// Output:
	// true
}
