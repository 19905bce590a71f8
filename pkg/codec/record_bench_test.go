//go:build bench
// +build bench

package codec

import (
	"strings"
	"testing"
)

func benchmarkRecords() []struct {
	name   string
	record Record
} {
	return []struct {
		name   string
		record Record
	}{
		{
			name:   "empty",
			record: Record{},
		},
		{
			name: "typical",
			record: Record{
				FirstName:   "Ada",
				LastName:    "Lovelace",
				Company:     "Analytical Engines Ltd",
				Title:       "Programmer",
				Department:  "R&D",
				Email:       "ada@example.com",
				City:        "London",
				Country:     "UK",
				PhoneNumber: "5551234",
			},
		},
		{
			name:   "long comment",
			record: Record{Comment: strings.Repeat("c", 10000)},
		},
	}
}

func BenchmarkRecordCodec_Encode(b *testing.B) {
	codec := NewRecordCodec()

	for _, bm := range benchmarkRecords() {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Encode(bm.record); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRecordCodec_Decode(b *testing.B) {
	codec := NewRecordCodec()

	for _, bm := range benchmarkRecords() {
		b.Run(bm.name, func(b *testing.B) {
			encoded, err := codec.Encode(bm.record)
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Decode(encoded); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
