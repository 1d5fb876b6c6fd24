package palette

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	p := NewFixed(ApplicationColors)

	color, err := p.ColorFor("lapack_dgeqrt")
	require.NoError(t, err)
	assert.Equal(t, "#8dd3c7", color)

	_, err = p.ColorFor("lapack_unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
	var unknown *UnknownCategoryError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "lapack_unknown", unknown.Category)

	// unknown kinds are not learnt by a fixed palette
	_, err = p.ColorFor("lapack_unknown")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Equal(t, []string{"lapack_dgeqrt", "lapack_dlarfb", "lapack_dtpmqrt", "lapack_dtpqrt"}, p.Categories())
}

func TestDynamic_StableSlots(t *testing.T) {
	p := NewDynamic([]string{"red", "green"})

	a, err := p.ColorFor("a")
	require.NoError(t, err)
	b, _ := p.ColorFor("b")
	c, _ := p.ColorFor("c")
	again, _ := p.ColorFor("a")

	assert.Equal(t, "red", a)
	assert.Equal(t, "green", b)
	assert.Equal(t, "red#1", c)
	assert.Equal(t, a, again)
	assert.Equal(t, []string{"a", "b", "c"}, p.Categories())
	assert.Equal(t, Dynamic, p.Policy())
}

func TestDynamic_KeysStayDistinctPastColorList(t *testing.T) {
	p := NewDynamic(nil)
	seen := make(map[string]string)
	for i := 0; i < 3*len(RuntimeColors)+1; i++ {
		kind := fmt.Sprintf("k%02d", i)
		color, err := p.ColorFor(kind)
		require.NoError(t, err)
		other, dup := seen[color]
		assert.False(t, dup, "%s shares %s with %s", kind, color, other)
		seen[color] = kind
	}
	assert.Len(t, seen, 3*len(RuntimeColors)+1)

	eleventh, err := p.ColorFor("k10")
	require.NoError(t, err)
	assert.Equal(t, RuntimeColors[0]+"#1", eleventh)
}

func TestDynamic_DefaultsToRuntimeColors(t *testing.T) {
	p := NewDynamic(nil)
	color, err := p.ColorFor("anything")
	require.NoError(t, err)
	assert.Equal(t, RuntimeColors[0], color)
}

func TestDynamic_ConcurrentLookups(t *testing.T) {
	p := NewDynamic(RuntimeColors)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, k := range []string{"x", "y", "z"} {
				_, _ = p.ColorFor(k)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, p.Categories(), 3)
}
