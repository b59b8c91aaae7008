package samples

import (
	"encoding/json"
	"fmt"
)

// Load decodes a JSON catalogue file embedded next to this package.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := dataFS.ReadFile(filename)
	if err != nil {
		return result, fmt.Errorf("failed to read sample catalogue %s: %w", filename, err)
	}

	if err := json.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to decode sample catalogue %s: %w", filename, err)
	}

	return result, nil
}
