package records

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/raffle/pkg/config"
)

// IDGenerator returns a new random record identifier
type IDGenerator func() string

// UUIDGenerator returns canonical random (v4) UUID strings
func UUIDGenerator() string {
	return uuid.NewString()
}

// KSUIDGenerator returns KSUIDs, which sort by creation time
func KSUIDGenerator() string {
	return ksuid.New().String()
}

// GeneratorFor maps a configured id format to its generator
func GeneratorFor(format string) (IDGenerator, error) {
	switch format {
	case config.IDFormatUUID, "":
		return UUIDGenerator, nil
	case config.IDFormatKSUID:
		return KSUIDGenerator, nil
	}
	return nil, fmt.Errorf("unknown id format %q", format)
}
