package models

import "time"

// ChartSelect picks the aggregate a chart series plots.
type ChartSelect string

const SelectCount ChartSelect = "count"

// ChartDuration is the bucketing interval for time-discriminated charts.
type ChartDuration string

const (
	DurationHour  ChartDuration = "hour"
	DurationDay   ChartDuration = "day"
	DurationWeek  ChartDuration = "week"
	DurationMonth ChartDuration = "month"
	DurationYear  ChartDuration = "year"
)

// Seconds returns the interval length used by the graph endpoint.
func (d ChartDuration) Seconds() int64 {
	switch d {
	case DurationHour:
		return 60 * 60
	case DurationDay:
		return 60 * 60 * 24
	case DurationWeek:
		return 60 * 60 * 24 * 7
	case DurationMonth:
		return 60 * 60 * 24 * 365 / 12
	case DurationYear:
		return 60 * 60 * 24 * 365
	}
	return 0
}

// ChartDiscriminator controls how chart points are grouped.
type ChartDiscriminator struct {
	Discriminator string // "none" or "duration"
	Duration      ChartDuration
}

// ChartSeriesQuery describes one series: an aggregate over a post filter.
type ChartSeriesQuery struct {
	Name   string
	Select ChartSelect
	Filter PostSearchQuery
}

// ChartQuery is a named collection of series sharing a discriminator.
type ChartQuery struct {
	Name          string
	Series        []ChartSeriesQuery
	Discriminator ChartDiscriminator
}

// ChartPoint is a single plotted value, either time-keyed or labelled.
type ChartPoint struct {
	Time  time.Time
	Label string
	Y     float64
}

// ChartSeries holds the resolved points of one series.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// Chart is the fully resolved result of a ChartQuery.
type Chart struct {
	Name          string
	Series        []ChartSeries
	Discriminator ChartDiscriminator
}
