package set_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linqsql/linqsql/set"
)

func TestNewSeedsFromVariadicElements(t *testing.T) {
	s := set.New(1, 2, 3)

	assert.Equal(t, 3, s.Size())
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(4))
}

func TestNewWithNoElementsIsEmpty(t *testing.T) {
	s := set.New[string]()

	assert.Equal(t, 0, s.Size())
	assert.False(t, s.Contains("anything"))
}

func TestAddIsIdempotentAndReportsWhetherAnythingChanged(t *testing.T) {
	s := set.New[int]()

	assert.True(t, s.Add(1, 2))
	assert.Equal(t, 2, s.Size())

	assert.False(t, s.Add(1, 2))
	assert.Equal(t, 2, s.Size())

	assert.True(t, s.Add(2, 3))
	assert.Equal(t, 3, s.Size())
}

func TestValuesReturnsEveryMember(t *testing.T) {
	s := set.New("a", "b", "c")

	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.Values())
}

func TestNewHashSetStartsEmpty(t *testing.T) {
	s := set.NewHashSet[int]()

	assert.Equal(t, 0, s.Size())
}

func TestNewHashSetWithCapacityStartsEmpty(t *testing.T) {
	s := set.NewHashSetWithCapacity[int](16)

	assert.Equal(t, 0, s.Size())
	assert.False(t, s.Contains(1))
}

func TestNewHashSetFromSliceSeedsMembers(t *testing.T) {
	s := set.NewHashSetFromSlice([]int{1, 2, 2, 3})

	assert.Equal(t, 3, s.Size())
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(3))
}
