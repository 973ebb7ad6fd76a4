package dicebag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

func TestRollerHistory(t *testing.T) {
	tests := []struct {
		notation string
		rolls    []int
		text     string
		total    int
		groups   int
	}{
		{"3d10", []int{5, 7, 2}, "[5, 7, 2]", 14, 1},
		{"1d10", []int{5}, "5", 5, 1},
		{"2d6+3", []int{4, 2}, "[4, 2] + 3", 9, 1},
		{"4d6kh3", []int{3, 1, 6, 4}, "[3, 1, 6, 4]", 13, 1},
		{"1d20 + 5 - 1d4", []int{17, 3}, "17 + 5 - 3", 19, 2},
		{"-1d1-2d1", []int{1, 1, 1}, "-1 - [1, 1]", -3, 2},
		{"7", nil, "7", 7, 0},
		{"0d6+1", nil, "[] + 1", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			history, err := NewRoller(dice.NewSequenceGenerator(tt.rolls...)).Roll(mustParse(t, tt.notation))
			require.NoError(t, err)
			assert.Equal(t, tt.text, history.Text)
			assert.Equal(t, tt.text, history.String())
			assert.Equal(t, tt.total, history.Total)
			assert.Len(t, history.Results, tt.groups)
			assert.NotNil(t, history.Results)
		})
	}
}

func TestRollerResultsInOrder(t *testing.T) {
	history, err := NewRoller(dice.NewSequenceGenerator(1, 2, 3, 4, 5, 6)).Roll(mustParse(t, "1d4+2d6-3d8"))
	require.NoError(t, err)
	require.Len(t, history.Results, 3)

	assert.Equal(t, dice.New(1, 4), history.Results[0].Dice)
	assert.Equal(t, []int{1}, history.Results[0].Rolls)
	assert.Equal(t, dice.New(2, 6), history.Results[1].Dice)
	assert.Equal(t, []int{2, 3}, history.Results[1].Rolls)
	assert.Equal(t, dice.New(3, 8), history.Results[2].Dice)
	assert.Equal(t, []int{4, 5, 6}, history.Results[2].Rolls)
	assert.Equal(t, 1+5-15, history.Total)
}

func TestRollerTransformer(t *testing.T) {
	var indexes []int
	double := func(result dice.RollResult, index int) dice.RollResult {
		indexes = append(indexes, index)
		result.Total *= 2
		return result
	}

	roller := NewRoller(dice.NewSequenceGenerator(2, 3, 4), WithRollTransformer(double))
	history, err := roller.Roll(mustParse(t, "1d6 + 1d6 - 1d6 + 1"))
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, indexes)
	assert.Equal(t, 4+6-8+1, history.Total)
	// Text shows the raw faces.
	assert.Equal(t, "2 + 3 - 4 + 1", history.Text)
}

func TestRollerFailsWithoutPartialHistory(t *testing.T) {
	history, err := NewRoller(dice.NewSequenceGenerator(1)).Roll(mustParse(t, "1d6+1d6"))
	require.Error(t, err)
	assert.Equal(t, RollHistory{}, history)
}
