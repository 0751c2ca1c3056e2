package ival

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func unionStrings(existing, inserted string) string { return existing + inserted }

func TestMap_InsertDisjoint(t *testing.T) {
	m := NewMap[int, string]()
	m.InsertAndUnify(HalfOpen(1, 4), "a", unionStrings)
	m.InsertAndUnify(HalfOpen(8, 10), "b", unionStrings)

	entries := m.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Value)
	assert.Equal(t, "b", entries[1].Value)
}

func TestMap_InsertOverlapSplits(t *testing.T) {
	m := NewMap[int, string]()
	m.InsertAndUnify(HalfOpen(1, 5), "a", unionStrings)
	m.InsertAndUnify(HalfOpen(3, 8), "b", unionStrings)

	entries := m.Entries()
	assert.Equal(t, []MapEntry[int, string]{
		{Interval: HalfOpen(1, 3), Value: "a"},
		{Interval: HalfOpen(3, 5), Value: "ab"},
		{Interval: HalfOpen(5, 8), Value: "b"},
	}, entries)
}

func TestMap_InsertEquivalentUnifies(t *testing.T) {
	m := NewMap[int, string]()
	m.InsertAndUnify(HalfOpen(1, 5), "a", unionStrings)
	m.InsertAndUnify(HalfOpen(1, 5), "b", unionStrings)

	entries := m.Entries()
	assert.Equal(t, []MapEntry[int, string]{{Interval: HalfOpen(1, 5), Value: "ab"}}, entries)
}

func TestMap_Get(t *testing.T) {
	m := NewMap[int, string]()
	m.InsertAndUnify(HalfOpen(1, 5), "a", unionStrings)

	v, ok := m.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = m.Get(9)
	assert.False(t, ok)
}
