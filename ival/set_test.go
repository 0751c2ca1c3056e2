package ival

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_InsertMerges(t *testing.T) {
	s := NewSet[int]()
	s.Insert(HalfOpen(1, 4))
	s.Insert(HalfOpen(8, 10))
	s.Insert(HalfOpen(4, 6)) // touches the first run, merges it

	assert.Equal(t, []Interval[int]{HalfOpen(1, 6), HalfOpen(8, 10)}, s.Intervals())
}

func TestSet_InsertIdempotent(t *testing.T) {
	s := NewSet[int]()
	s.Insert(HalfOpen(1, 4))
	s.Insert(HalfOpen(1, 4))
	assert.Equal(t, []Interval[int]{HalfOpen(1, 4)}, s.Intervals())
}

func TestSet_InsertSpanningMultiple(t *testing.T) {
	s := NewSet[int]()
	s.Insert(HalfOpen(1, 2))
	s.Insert(HalfOpen(3, 4))
	s.Insert(HalfOpen(5, 6))
	s.Insert(HalfOpen(0, 10)) // swallows all three

	assert.Equal(t, []Interval[int]{HalfOpen(0, 10)}, s.Intervals())
}

func TestSet_Contains(t *testing.T) {
	s := NewSet[int]()
	s.Insert(HalfOpen(1, 4))
	s.Insert(HalfOpen(8, 10))

	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(4))
	assert.False(t, s.Contains(7))
	assert.True(t, s.Contains(9))
}
