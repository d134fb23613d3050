package coupon

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the coupon list from a JSON file.
func Load(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read coupon file: %w", err)
	}

	var coupons []Coupon
	if err := json.Unmarshal(data, &coupons); err != nil {
		return nil, fmt.Errorf("failed to parse coupon file %s: %w", path, err)
	}

	return NewBook(coupons), nil
}
