package dto

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Requirement trees come from stored JSON and are in theory unbounded, so
// recursion stops contributing past this depth.
const maxScoreDepth = 64

// CalculateMaxScore sums every positive numeric "points" field found in a
// nested tree of maps and slices, at any depth. Negative or non-numeric
// points count as zero, and inputs that are neither map nor slice score zero.
func CalculateMaxScore(requirements interface{}) int {
	return int(recursiveScore(requirements, 0))
}

func recursiveScore(data interface{}, depth int) float64 {
	if depth > maxScoreDepth {
		return 0
	}

	switch v := data.(type) {
	case map[string]interface{}:
		total := 0.0
		if points, ok := toNumber(v["points"]); ok && points > 0 {
			total += points
		}
		for _, value := range v {
			total += recursiveScore(value, depth+1)
		}
		return total
	case []interface{}:
		total := 0.0
		for _, item := range v {
			total += recursiveScore(item, depth+1)
		}
		return total
	}

	return 0
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// MaxScoreFromRequirements parses a stored requirements column and scores it.
// Empty or malformed JSON scores zero.
func MaxScoreFromRequirements(raw datatypes.JSON) int {
	if len(raw) == 0 {
		return 0
	}
	var tree interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return 0
	}
	return CalculateMaxScore(tree)
}
