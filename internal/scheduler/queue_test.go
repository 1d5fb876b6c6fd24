package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traceview/internal/models"
)

func series(values ...float64) []models.QueueSample {
	out := make([]models.QueueSample, len(values))
	for i, v := range values {
		out[i] = models.QueueSample{Timestamp: float64(i), QueueDepth: v}
	}
	return out
}

func TestDownsample_StrideOneIsIdentity(t *testing.T) {
	in := series(1, 2, 3, 2, 1)
	out, err := Downsample(in, 1)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDownsample_StrideOneDropsConsecutiveDuplicates(t *testing.T) {
	in := []models.QueueSample{{Timestamp: 0, QueueDepth: 1}, {Timestamp: 0, QueueDepth: 1}, {Timestamp: 1, QueueDepth: 2}}
	out, err := Downsample(in, 1)
	require.NoError(t, err)
	assert.Equal(t, in[1:], out)
}

func TestDownsample_KeepsEveryStrideAndLast(t *testing.T) {
	in := series(0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	out, err := Downsample(in, 4)
	require.NoError(t, err)

	var stamps []float64
	for _, s := range out {
		stamps = append(stamps, s.Timestamp)
	}
	assert.Equal(t, []float64{0, 4, 8, 9}, stamps)
}

func TestDownsample_LastAlreadyOnStride(t *testing.T) {
	in := series(0, 1, 2, 3, 4, 5, 6)
	out, err := Downsample(in, 3)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, in[6], out[2])
}

func TestDownsample_AlwaysIncludesLast(t *testing.T) {
	in := series(5, 3, 8, 1, 9, 2, 7, 4, 6, 0, 11)
	for stride := 1; stride <= len(in)+2; stride++ {
		out, err := Downsample(in, stride)
		require.NoError(t, err)
		require.NotEmpty(t, out)
		assert.Equal(t, in[len(in)-1], out[len(out)-1], "stride %d", stride)
		assert.Equal(t, in[0], out[0], "stride %d", stride)
		for i := 1; i < len(out); i++ {
			assert.Less(t, out[i-1].Timestamp, out[i].Timestamp)
		}
	}
}

func TestDownsample_Stable(t *testing.T) {
	in := series(1, 1, 2, 2, 3, 3, 4)
	a, err := Downsample(in, 2)
	require.NoError(t, err)
	b, err := Downsample(in, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDownsample_ShortSeries(t *testing.T) {
	out, err := Downsample(nil, 6)
	require.NoError(t, err)
	assert.Empty(t, out)

	one := series(3)
	out, err = Downsample(one, 6)
	require.NoError(t, err)
	assert.Equal(t, one, out)
}

func TestDownsample_InvalidStride(t *testing.T) {
	_, err := Downsample(series(1, 2), 0)
	assert.ErrorIs(t, err, ErrInvalidStride)
}

func TestSplit(t *testing.T) {
	q, err := Split([]models.QueueRow{
		{Start: -1, Value: 4, Type: TypeReady},
		{Start: 0, Value: 1, Type: TypeReady},
		{Start: 0, Value: 2, Type: TypeSubmitted},
		{Start: 1.5, Value: 3, Type: TypeReady},
	})
	require.NoError(t, err)

	assert.Equal(t, []models.QueueSample{
		{Timestamp: 0, QueueDepth: 1, Category: "1"},
		{Timestamp: 1.5, QueueDepth: 3, Category: "3"},
	}, q.Ready)
	assert.Equal(t, []models.QueueSample{{Timestamp: 0, QueueDepth: 2, Category: "2"}}, q.Submitted)
}

func TestSplit_UnknownType(t *testing.T) {
	_, err := Split([]models.QueueRow{{Start: 0, Value: 1, Type: "Waiting"}})
	assert.ErrorIs(t, err, ErrUnknownQueueType)
}

func TestViews(t *testing.T) {
	q := Queues{Ready: series(0, 1, 2, 3, 4, 5, 6, 7), Submitted: series(1, 2, 3)}

	submitted, ready, err := q.Views(DefaultStride)
	require.NoError(t, err)
	assert.Equal(t, q.Submitted, submitted.Samples)
	assert.Equal(t, 3, submitted.InputLength)
	assert.Equal(t, TypeReady, ready.Name)
	assert.Equal(t, 8, ready.InputLength)
	assert.Len(t, ready.Samples, 3)

	_, _, err = q.Views(0)
	assert.ErrorIs(t, err, ErrInvalidStride)
}
