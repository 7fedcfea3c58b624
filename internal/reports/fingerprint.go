package reports

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the JSON encoding of input. Equal inputs always produce
// the same fingerprint, so it can key memoized results.
func Fingerprint(input any) (string, error) {
	digest := xxhash.New()
	if err := json.NewEncoder(digest).Encode(input); err != nil {
		return "", fmt.Errorf("reports: fingerprint: %w", err)
	}
	return strconv.FormatUint(digest.Sum64(), 16), nil
}
