package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pulse-api/internal/models"
)

func TestSeriesAreGapFilled(t *testing.T) {
	r := NewDateRange(day0, day0.AddDate(0, 0, 6))
	visits := []models.TrafficFact{
		traffic("/a", day0.AddDate(0, 0, 2), 40, 1),
		traffic("/a", day0.AddDate(0, 0, 2), 2, 1),
		traffic("/b", day0.AddDate(0, 0, 3), 99, 1),
		traffic("/a", day0.AddDate(0, 0, 9), 99, 1),
	}
	earnings := []models.RevenueFact{revenue("/a", day0, 1.25)}

	views := PageviewSeries(visits, "/a", r)
	money := RevenueSeries(earnings, "/a", r)

	require.Len(t, views, 7)
	require.Len(t, money, 7)
	for i := range views {
		assert.Equal(t, day0.AddDate(0, 0, i), views[i].Date)
		assert.Equal(t, day0.AddDate(0, 0, i), money[i].Date)
	}
	assert.Equal(t, int64(42), views[2].Value)
	assert.Equal(t, int64(0), views[3].Value)
	assert.Equal(t, 1.25, money[0].Value)
	assert.Equal(t, 0.0, money[6].Value)
}

func TestSeriesSingleDay(t *testing.T) {
	r := NewDateRange(day0, day0)

	assert.Len(t, PageviewSeries(nil, "/a", r), 1)
	assert.Len(t, RevenueSeries(nil, "/a", r), 1)
}
