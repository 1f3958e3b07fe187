package setutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSet_AddHasLen(t *testing.T) {
	s := NewStringSet()
	assert.Equal(t, 0, s.Len())

	s.Add("grp-finance")
	s.Add("grp-finance") // duplicate is a no-op
	s.Add("grp-reports")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("grp-finance"))
	assert.False(t, s.Has("grp-hr"))
}

func TestStringSet_Difference(t *testing.T) {
	target := NewStringSetFrom([]string{"grp-finance", "grp-reports"})
	actual := NewStringSetFrom([]string{"grp-finance"})

	missing := target.Difference(actual)
	assert.Equal(t, []string{"grp-reports"}, missing.ToSortedSlice())

	extra := actual.Difference(target)
	assert.Equal(t, 0, extra.Len())
}

func TestStringSet_Intersection(t *testing.T) {
	a := NewStringSetFrom([]string{"a", "b", "c"})
	b := NewStringSetFrom([]string{"b", "c", "d"})

	assert.Equal(t, []string{"b", "c"}, a.Intersection(b).ToSortedSlice())
}

func TestStringSet_Union(t *testing.T) {
	a := NewStringSetFrom([]string{"a", "b"})
	b := NewStringSetFrom([]string{"b", "c"})

	assert.Equal(t, []string{"a", "b", "c"}, a.Union(b).ToSortedSlice())
}

func TestStringSet_ToSortedSlice_Empty(t *testing.T) {
	s := NewStringSet()
	assert.Empty(t, s.ToSortedSlice())
}
