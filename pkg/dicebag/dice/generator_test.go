package dice

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGeneratorRange(t *testing.T) {
	gen := NewRandomGenerator(1)
	for _, sides := range []int{1, 2, 6, 20, 100} {
		values, err := gen.Generate(200, sides)
		require.NoError(t, err)
		require.Len(t, values, 200)
		for _, v := range values {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, sides)
		}
	}
}

func TestRandomGeneratorSeeded(t *testing.T) {
	a, err := NewRandomGenerator(42).Generate(20, 6)
	require.NoError(t, err)
	b, err := NewRandomGenerator(42).Generate(20, 6)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandomGeneratorRejectsBadDice(t *testing.T) {
	_, err := NewRandomGenerator(1).Generate(1, 0)
	assert.ErrorIs(t, err, ErrInvalidDice)
}

func TestRandomGeneratorConcurrent(t *testing.T) {
	gen := NewRandomGenerator(7)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := gen.Generate(3, 6)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator(5, 7, 2)
	assert.Equal(t, 3, gen.Remaining())

	values, err := gen.Generate(2, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 7}, values)
	assert.Equal(t, 1, gen.Remaining())

	_, err = gen.Generate(2, 6)
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestCyclingGenerator(t *testing.T) {
	gen := NewCyclingGenerator(1, 2)
	values, err := gen.Generate(5, 6)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1, 2, 1}, values)
	assert.Equal(t, 2, gen.Remaining())

	_, err = NewCyclingGenerator().Generate(1, 6)
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestGeneratorFunc(t *testing.T) {
	var gotQuantity, gotSides int
	gen := GeneratorFunc(func(quantity, sides int) ([]int, error) {
		gotQuantity, gotSides = quantity, sides
		return []int{sides}, nil
	})

	values, err := gen.Generate(1, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, values)
	assert.Equal(t, 1, gotQuantity)
	assert.Equal(t, 8, gotSides)
}
