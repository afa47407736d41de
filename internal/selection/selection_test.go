package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggle(t *testing.T) {
	tr := New()
	assert.True(t, tr.Toggle("a"))
	assert.True(t, tr.IsSelected("a"))
	assert.Equal(t, 1, tr.Count())

	assert.False(t, tr.Toggle("a"))
	assert.False(t, tr.IsSelected("a"))
	assert.Zero(t, tr.Count())
}

func TestSelectAllAndClear(t *testing.T) {
	tr := New()
	tr.SelectAll([]string{"c", "a", "b", "a"})
	assert.Equal(t, 3, tr.Count())
	assert.Equal(t, []string{"a", "b", "c"}, tr.SelectedIDs())

	tr.Clear()
	assert.Zero(t, tr.Count())
	assert.Empty(t, tr.SelectedIDs())
}

func TestObserversSeeEveryCountChange(t *testing.T) {
	tr := New()
	var counts []int
	tr.Subscribe(func(n int) { counts = append(counts, n) })

	tr.Toggle("1")
	tr.Select("1") // no change
	tr.SelectAll([]string{"1", "2", "3"})
	tr.Toggle("2")
	tr.Clear()
	tr.Clear() // no change

	assert.Equal(t, []int{1, 3, 2, 0}, counts)
}

func TestRetain(t *testing.T) {
	tr := New()
	tr.SelectAll([]string{"1", "2", "3"})
	var last = -1
	tr.Subscribe(func(n int) { last = n })

	tr.Retain([]string{"2", "3", "4"})
	assert.Equal(t, []string{"2", "3"}, tr.SelectedIDs())
	assert.Equal(t, 2, last)

	last = -1
	tr.Retain([]string{"2", "3"})
	assert.Equal(t, -1, last, "no notification when nothing was dropped")
}

func TestSubscribeNil(t *testing.T) {
	tr := New()
	tr.Subscribe(nil)
	assert.NotPanics(t, func() { tr.Toggle("x") })
}
