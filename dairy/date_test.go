package dairy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahalaxmi/dairybook/dairy"
)

func TestParseDate(t *testing.T) {
	d, err := dairy.ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", d.String())

	_, err = dairy.ParseDate("28/02/2026")
	assert.Error(t, err)
	_, err = dairy.ParseDate("")
	assert.Error(t, err)
}

func TestDate_ComparableAsMapKey(t *testing.T) {
	// Two dates built through different paths must be the same map key.
	parsed, err := dairy.ParseDate("2026-02-28")
	require.NoError(t, err)
	constructed := dairy.NewDate(2026, time.February, 28)

	m := map[dairy.Date]int{parsed: 1}
	assert.Equal(t, 1, m[constructed])
}

func TestDate_DaysInclusive(t *testing.T) {
	start := dairy.NewDate(2026, time.June, 1)
	assert.Equal(t, 1, start.DaysInclusive(start), "same day counts once")
	assert.Equal(t, 30, start.DaysInclusive(dairy.NewDate(2026, time.June, 30)))
	assert.Equal(t, 0, start.DaysInclusive(dairy.NewDate(2026, time.May, 31)), "inverted range")
}

func TestDate_NextCrossesMonthBoundary(t *testing.T) {
	d := dairy.NewDate(2026, time.January, 31)
	assert.Equal(t, "2026-02-01", d.Next().String())
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, "2026-02-28", dairy.EndOfMonth(2026, time.February).String())
	assert.Equal(t, "2028-02-29", dairy.EndOfMonth(2028, time.February).String(), "leap year")
	assert.Equal(t, "2026-12-31", dairy.EndOfMonth(2026, time.December).String())
}
