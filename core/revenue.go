package core

import (
	"strconv"
	"time"
)

// ShipmentRecord is one committed shipment as the aggregator sees it:
// creation instant plus the amount recorded at commit time (sum of the
// line amounts actually charged, never recomputed from current prices).
type ShipmentRecord struct {
	ID        string
	CreatedAt time.Time
	Amount    float64
}

// RevenueTotals are the dashboard KPIs: revenue for today, the current
// month and the current year. Each wider period is a superset of the
// narrower one.
type RevenueTotals struct {
	Day   float64 `json:"dayTotal"`
	Month float64 `json:"monthTotal"`
	Year  float64 `json:"yearTotal"`
}

// Period selects the chart bucketing: hours of a day, days of a month
// or months of a year.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Series is a chart-ready bucketed view of revenue: parallel label and
// value slices, their grand total and a human-readable period title.
type Series struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
	Title  string    `json:"title"`
}

// RevenueAggregator derives KPIs and chart series from the committed
// shipment history. It keeps no state between calls: shipments may be
// added or deleted at any time, so every result is recomputed from the
// collection it is handed.
type RevenueAggregator struct {
	loc         *time.Location
	monthLabels [12]string
}

func NewRevenueAggregator(loc *time.Location) *RevenueAggregator {
	if loc == nil {
		loc = time.Local
	}
	agg := &RevenueAggregator{loc: loc}
	for m := time.January; m <= time.December; m++ {
		agg.monthLabels[m-1] = m.String()[:3]
	}
	return agg
}

// WithMonthLabels replaces the year-series month abbreviations, for
// callers that want localized labels.
func (a *RevenueAggregator) WithMonthLabels(labels [12]string) *RevenueAggregator {
	a.monthLabels = labels
	return a
}

// Totals filters the full shipment collection three times, once per
// calendar window around now.
func (a *RevenueAggregator) Totals(shipments []ShipmentRecord, now time.Time) RevenueTotals {
	now = now.In(a.loc)
	var totals RevenueTotals
	for _, s := range shipments {
		t := s.CreatedAt.In(a.loc)
		if t.Year() != now.Year() {
			continue
		}
		totals.Year += s.Amount
		if t.Month() != now.Month() {
			continue
		}
		totals.Month += s.Amount
		if t.Day() == now.Day() {
			totals.Day += s.Amount
		}
	}
	return totals
}

// Series buckets shipment amounts over the calendar window of now.
// An unknown period yields an empty series; aggregation has no error
// path, an empty history is a normal state.
func (a *RevenueAggregator) Series(shipments []ShipmentRecord, period Period, now time.Time) Series {
	now = now.In(a.loc)
	switch period {
	case PeriodDay:
		return a.daySeries(shipments, now)
	case PeriodMonth:
		return a.monthSeries(shipments, now)
	case PeriodYear:
		return a.yearSeries(shipments, now)
	default:
		return Series{Labels: []string{}, Values: []float64{}}
	}
}

// daySeries: 24 hourly buckets for the calendar day of now, labels
// zero-padded "00:00".."23:00".
func (a *RevenueAggregator) daySeries(shipments []ShipmentRecord, now time.Time) Series {
	labels := make([]string, 24)
	values := make([]float64, 24)
	for h := 0; h < 24; h++ {
		labels[h] = twoDigits(h) + ":00"
	}
	for _, s := range shipments {
		t := s.CreatedAt.In(a.loc)
		if t.Year() == now.Year() && t.Month() == now.Month() && t.Day() == now.Day() {
			values[t.Hour()] += s.Amount
		}
	}
	return newSeries(labels, values, now.Format("2 January 2006"))
}

// monthSeries: one bucket per day of now's month, labels "1".."31"
// without padding.
func (a *RevenueAggregator) monthSeries(shipments []ShipmentRecord, now time.Time) Series {
	days := daysInMonth(now)
	labels := make([]string, days)
	values := make([]float64, days)
	for d := 0; d < days; d++ {
		labels[d] = strconv.Itoa(d + 1)
	}
	for _, s := range shipments {
		t := s.CreatedAt.In(a.loc)
		if t.Year() == now.Year() && t.Month() == now.Month() {
			values[t.Day()-1] += s.Amount
		}
	}
	return newSeries(labels, values, now.Format("January 2006"))
}

// yearSeries: 12 fixed month buckets for now's year.
func (a *RevenueAggregator) yearSeries(shipments []ShipmentRecord, now time.Time) Series {
	labels := make([]string, 12)
	values := make([]float64, 12)
	copy(labels, a.monthLabels[:])
	for _, s := range shipments {
		t := s.CreatedAt.In(a.loc)
		if t.Year() == now.Year() {
			values[t.Month()-1] += s.Amount
		}
	}
	return newSeries(labels, values, now.Format("2006"))
}

func newSeries(labels []string, values []float64, title string) Series {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return Series{Labels: labels, Values: values, Total: total, Title: title}
}

func daysInMonth(t time.Time) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
