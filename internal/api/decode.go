package api

import (
	"encoding/json"
	"fmt"
)

// decode converts loosely typed action arguments into a request struct via
// a JSON round-trip.
func decode[T any](args map[string]any) (T, error) {
	var result T
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}
