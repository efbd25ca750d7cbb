package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdaySet(t *testing.T) {
	s, err := ParseWeekdaySet([]string{"Fri", "mon", " wed ", "mon"})

	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"mon", "wed", "fri"}, s.Codes())
	assert.Equal(t, "mon,wed,fri", s.String())
}

func TestParseWeekdaySet_RejectsUnknownCode(t *testing.T) {
	_, err := ParseWeekdaySet([]string{"mon", "funday"})

	assert.Error(t, err)
}

func TestWeekdaySet_Contains(t *testing.T) {
	s := MustWeekdaySet("sat", "sun")

	assert.True(t, s.Contains(MustDate("2024-06-15")))
	assert.True(t, s.Contains(MustDate("2024-06-16")))
	assert.False(t, s.Contains(MustDate("2024-06-17")))
	assert.True(t, s.Has(time.Saturday))
}

func TestParseWeekdayList(t *testing.T) {
	s, err := ParseWeekdayList("mon,tue,wed,thu,fri")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	empty, err := ParseWeekdayList("")
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}
