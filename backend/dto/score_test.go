package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestCalculateMaxScore(t *testing.T) {
	requirements := []interface{}{
		map[string]interface{}{"points": float64(5)},
		map[string]interface{}{
			"a": map[string]interface{}{"points": float64(3)},
			"b": []interface{}{
				map[string]interface{}{"points": float64(-1)},
				map[string]interface{}{"points": "x"},
			},
		},
	}

	assert.Equal(t, 8, CalculateMaxScore(requirements))
}

func TestCalculateMaxScoreDegenerateInputs(t *testing.T) {
	assert.Equal(t, 0, CalculateMaxScore(nil))
	assert.Equal(t, 0, CalculateMaxScore("points"))
	assert.Equal(t, 0, CalculateMaxScore(42))
	assert.Equal(t, 0, CalculateMaxScore([]interface{}{}))
	assert.Equal(t, 0, CalculateMaxScore(map[string]interface{}{}))
}

func TestCalculateMaxScoreNegativeAndNonNumeric(t *testing.T) {
	assert.Equal(t, 0, CalculateMaxScore(map[string]interface{}{"points": float64(-5)}))
	assert.Equal(t, 0, CalculateMaxScore(map[string]interface{}{"points": "ten"}))
	assert.Equal(t, 0, CalculateMaxScore(map[string]interface{}{"points": nil}))
}

func TestCalculateMaxScoreOrderIndependent(t *testing.T) {
	forward := []interface{}{
		map[string]interface{}{"points": float64(1)},
		map[string]interface{}{"points": float64(2)},
		map[string]interface{}{"points": float64(3)},
	}
	backward := []interface{}{forward[2], forward[1], forward[0]}

	assert.Equal(t, CalculateMaxScore(forward), CalculateMaxScore(backward))
}

func TestCalculateMaxScoreDeepNesting(t *testing.T) {
	// Past the depth guard, nodes stop contributing instead of recursing
	// forever.
	tree := map[string]interface{}{"points": float64(1)}
	for i := 0; i < maxScoreDepth*2; i++ {
		tree = map[string]interface{}{"child": tree}
	}
	assert.Equal(t, 0, CalculateMaxScore(tree))

	shallow := map[string]interface{}{"points": float64(1)}
	for i := 0; i < 10; i++ {
		shallow = map[string]interface{}{"child": shallow}
	}
	assert.Equal(t, 1, CalculateMaxScore(shallow))
}

func TestMaxScoreFromRequirements(t *testing.T) {
	raw := datatypes.JSON(`[{"points": 5}, {"nested": {"points": 2}}]`)
	assert.Equal(t, 7, MaxScoreFromRequirements(raw))

	assert.Equal(t, 0, MaxScoreFromRequirements(nil))
	assert.Equal(t, 0, MaxScoreFromRequirements(datatypes.JSON(`{broken`)))
}
