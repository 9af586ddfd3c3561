package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shipmentAt(t *testing.T, value string, amount float64) ShipmentRecord {
	t.Helper()
	created, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ShipmentRecord{ID: "s_" + value, CreatedAt: created, Amount: amount}
}

func TestMonthSeriesScenario(t *testing.T) {
	agg := NewRevenueAggregator(time.UTC)
	shipments := []ShipmentRecord{
		shipmentAt(t, "2024-03-01T09:00:00Z", 300),
		shipmentAt(t, "2024-03-15T23:00:00Z", 700),
	}
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	series := agg.Series(shipments, PeriodMonth, now)
	require.Len(t, series.Values, 31)
	require.Len(t, series.Labels, 31)
	assert.Equal(t, 300.0, series.Values[0])
	assert.Equal(t, 700.0, series.Values[14])
	for i, v := range series.Values {
		if i != 0 && i != 14 {
			assert.Zero(t, v, "bucket %d", i)
		}
	}
	assert.Equal(t, 1000.0, series.Total)
	assert.Equal(t, "1", series.Labels[0])
	assert.Equal(t, "31", series.Labels[30])
	assert.Equal(t, "March 2024", series.Title)
}

func TestDaySeriesBucketsByHour(t *testing.T) {
	agg := NewRevenueAggregator(time.UTC)
	shipments := []ShipmentRecord{
		shipmentAt(t, "2024-03-20T09:30:00Z", 250),
		shipmentAt(t, "2024-03-20T09:59:00Z", 50),
		shipmentAt(t, "2024-03-20T23:00:00Z", 100),
		shipmentAt(t, "2024-03-19T09:00:00Z", 999), // previous day, excluded
	}
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	series := agg.Series(shipments, PeriodDay, now)
	require.Len(t, series.Values, 24)
	assert.Equal(t, 300.0, series.Values[9])
	assert.Equal(t, 100.0, series.Values[23])
	assert.Equal(t, 400.0, series.Total)
	assert.Equal(t, "00:00", series.Labels[0])
	assert.Equal(t, "09:00", series.Labels[9])
	assert.Equal(t, "23:00", series.Labels[23])
	assert.Equal(t, "20 March 2024", series.Title)
}

func TestYearSeriesLabelsAndBuckets(t *testing.T) {
	agg := NewRevenueAggregator(time.UTC)
	shipments := []ShipmentRecord{
		shipmentAt(t, "2024-01-05T10:00:00Z", 100),
		shipmentAt(t, "2024-12-31T10:00:00Z", 200),
		shipmentAt(t, "2023-12-31T10:00:00Z", 999), // previous year, excluded
	}
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	series := agg.Series(shipments, PeriodYear, now)
	require.Len(t, series.Values, 12)
	assert.Equal(t, 100.0, series.Values[0])
	assert.Equal(t, 200.0, series.Values[11])
	assert.Equal(t, 300.0, series.Total)
	assert.Equal(t, "Jan", series.Labels[0])
	assert.Equal(t, "Dec", series.Labels[11])
	assert.Equal(t, "2024", series.Title)
}

func TestTotalsMatchSeries(t *testing.T) {
	agg := NewRevenueAggregator(time.UTC)
	shipments := []ShipmentRecord{
		shipmentAt(t, "2024-03-20T08:00:00Z", 120),
		shipmentAt(t, "2024-03-20T19:00:00Z", 80),
		shipmentAt(t, "2024-03-02T10:00:00Z", 500),
		shipmentAt(t, "2024-01-15T10:00:00Z", 1000),
		shipmentAt(t, "2023-03-20T10:00:00Z", 9999),
	}
	now := time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

	totals := agg.Totals(shipments, now)
	assert.Equal(t, 200.0, totals.Day)
	assert.Equal(t, 700.0, totals.Month)
	assert.Equal(t, 1700.0, totals.Year)

	// Each series must sum to the matching KPI.
	assert.Equal(t, totals.Day, agg.Series(shipments, PeriodDay, now).Total)
	assert.Equal(t, totals.Month, agg.Series(shipments, PeriodMonth, now).Total)
	assert.Equal(t, totals.Year, agg.Series(shipments, PeriodYear, now).Total)
}

func TestEmptyHistory(t *testing.T) {
	agg := NewRevenueAggregator(time.UTC)
	now := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	totals := agg.Totals(nil, now)
	assert.Zero(t, totals.Day)
	assert.Zero(t, totals.Month)
	assert.Zero(t, totals.Year)

	for _, period := range []Period{PeriodDay, PeriodMonth, PeriodYear} {
		series := agg.Series(nil, period, now)
		assert.Zero(t, series.Total)
		require.NotEmpty(t, series.Values)
		for _, v := range series.Values {
			assert.Zero(t, v)
		}
	}

	// February 2024 is a leap month.
	assert.Len(t, agg.Series(nil, PeriodMonth, now).Values, 29)
}

func TestSeriesUnknownPeriod(t *testing.T) {
	agg := NewRevenueAggregator(time.UTC)
	series := agg.Series(nil, Period("week"), time.Now())
	assert.Empty(t, series.Values)
	assert.Zero(t, series.Total)
}

func TestTimezoneBucketing(t *testing.T) {
	// 23:30 UTC on the 19th is already the 20th one hour east.
	loc := time.FixedZone("UTC+1", 3600)
	agg := NewRevenueAggregator(loc)
	shipments := []ShipmentRecord{shipmentAt(t, "2024-03-19T23:30:00Z", 500)}
	now := time.Date(2024, time.March, 20, 10, 0, 0, 0, loc)

	totals := agg.Totals(shipments, now)
	assert.Equal(t, 500.0, totals.Day)

	series := agg.Series(shipments, PeriodDay, now)
	assert.Equal(t, 500.0, series.Values[0])
}
