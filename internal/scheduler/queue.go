package scheduler

import (
	"errors"
	"fmt"
	"strconv"

	"traceview/internal/models"
)

const (
	// DefaultStride keeps one ready sample out of six.
	DefaultStride = 6

	TypeReady     = "Ready"
	TypeSubmitted = "Submitted"
)

var (
	// ErrInvalidStride is returned for strides below one.
	ErrInvalidStride = errors.New("stride must be at least 1")
	// ErrUnknownQueueType is returned for rows outside Ready and Submitted.
	ErrUnknownQueueType = errors.New("unknown queue type")
)

// Queues holds the scheduler variables split by type.
type Queues struct {
	Ready     []models.QueueSample
	Submitted []models.QueueSample
}

// Split drops rows with a negative timestamp and partitions the rest by
// type, preserving input order.
func Split(rows []models.QueueRow) (Queues, error) {
	var q Queues
	for i, row := range rows {
		if row.Start < 0 {
			continue
		}
		sample := models.QueueSample{
			Timestamp:  row.Start,
			QueueDepth: row.Value,
			Category:   strconv.FormatFloat(row.Value, 'f', -1, 64),
		}
		switch row.Type {
		case TypeReady:
			q.Ready = append(q.Ready, sample)
		case TypeSubmitted:
			q.Submitted = append(q.Submitted, sample)
		default:
			return Queues{}, fmt.Errorf("row %d: %w %q", i, ErrUnknownQueueType, row.Type)
		}
	}
	return q, nil
}

// Views returns the submitted series in full and the ready series reduced
// with the given stride.
func (q Queues) Views(stride int) (submitted, ready models.QueueSeries, err error) {
	reduced, err := Downsample(q.Ready, stride)
	if err != nil {
		return models.QueueSeries{}, models.QueueSeries{}, err
	}
	submitted = models.QueueSeries{
		Name:        TypeSubmitted,
		Samples:     append([]models.QueueSample(nil), q.Submitted...),
		InputLength: len(q.Submitted),
	}
	ready = models.QueueSeries{
		Name:        TypeReady,
		Samples:     reduced,
		InputLength: len(q.Ready),
	}
	return submitted, ready, nil
}

// Downsample keeps every stride-th sample, always keeps the last one, and
// removes exact consecutive duplicates. The survivors are in input order and
// anchor the same right-continuous step shape at both ends.
func Downsample(series []models.QueueSample, stride int) ([]models.QueueSample, error) {
	if stride < 1 {
		return nil, ErrInvalidStride
	}
	if len(series) <= 1 {
		return append([]models.QueueSample(nil), series...), nil
	}

	last := len(series) - 1
	out := make([]models.QueueSample, 0, len(series)/stride+2)
	for i := 0; i < len(series); i += stride {
		out = appendDistinct(out, series[i])
	}
	if last%stride != 0 {
		out = appendDistinct(out, series[last])
	}
	return out, nil
}

func appendDistinct(out []models.QueueSample, s models.QueueSample) []models.QueueSample {
	if n := len(out); n > 0 && out[n-1] == s {
		return out
	}
	return append(out, s)
}
