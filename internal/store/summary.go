package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"aforo-worker-go/internal/models"
)

// Granularity selects the reporting window of a summary.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Summary is the aggregate view of counting activity over one window.
type Summary struct {
	Granularity Granularity    `json:"granularity"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	People      int64          `json:"people"`
	Vehicles    int64          `json:"vehicles"`
	Hourly      []HistogramBin `json:"hourly"`
	Buckets     []HistogramBin `json:"buckets"`
}

// HistogramBin is one labeled bucket with event counts split by area type.
type HistogramBin struct {
	Label    string `json:"label"`
	People   int64  `json:"people"`
	Vehicles int64  `json:"vehicles"`
}

// summaryRange computes the half-open UTC window [start, end) containing the
// anchor instant. Weeks start on Sunday.
func summaryRange(granularity Granularity, anchor time.Time) (time.Time, time.Time, error) {
	anchor = anchor.UTC()
	dayStart := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)

	switch granularity {
	case GranularityDay:
		return dayStart, dayStart.AddDate(0, 0, 1), nil
	case GranularityWeek:
		start := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
		return start, start.AddDate(0, 0, 7), nil
	case GranularityMonth:
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown granularity %q", granularity)
	}
}

// bucketLabels pre-generates every bucket label for the window so empty
// buckets still appear in the result. The key format matches the strftime
// expression used to group rows.
func bucketLabels(granularity Granularity, start, end time.Time) (labels []string, strftimeExpr string) {
	switch granularity {
	case GranularityDay:
		return hourLabels(), "%H"
	case GranularityWeek:
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			labels = append(labels, fmt.Sprintf("%d", int(d.Weekday())))
		}
		return labels, "%w"
	default:
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			labels = append(labels, fmt.Sprintf("%02d", d.Day()))
		}
		return labels, "%d"
	}
}

func hourLabels() []string {
	labels := make([]string, 24)
	for h := 0; h < 24; h++ {
		labels[h] = fmt.Sprintf("%02d", h)
	}
	return labels
}

type bucketRow struct {
	Bucket string
	Type   models.AreaType
	Count  int64
}

// Summarize aggregates enter and exit events of enabled areas over the
// window containing anchor. Alert kinds are excluded. areaID restricts the
// summary to one area when non-zero.
func (s *Store) Summarize(granularity Granularity, anchor time.Time, areaID uint) (*Summary, error) {
	start, end, err := summaryRange(granularity, anchor)
	if err != nil {
		return nil, err
	}

	// Each aggregate runs on a fresh query; gorm chains are single-use.
	base := func() *gorm.DB {
		q := s.db.Model(&models.CountingEvent{}).
			Joins("JOIN areas ON areas.id = counting_events.area_id").
			Where("areas.enabled = ?", true).
			Where("counting_events.kind IN ?", []models.EventKind{models.EventEnter, models.EventExit}).
			Where("counting_events.timestamp >= ? AND counting_events.timestamp < ?", start, end)
		if areaID != 0 {
			q = q.Where("counting_events.area_id = ?", areaID)
		}
		return q
	}

	summary := &Summary{Granularity: granularity, Start: start, End: end}

	var totals []struct {
		Type  models.AreaType
		Count int64
	}
	if err := base().
		Select("areas.type AS type, COUNT(*) AS count").
		Group("areas.type").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate totals: %w", err)
	}
	for _, t := range totals {
		switch t.Type {
		case models.AreaTypePeople:
			summary.People = t.Count
		case models.AreaTypeVehicles:
			summary.Vehicles = t.Count
		}
	}

	// Hourly histogram is always present, whatever the granularity.
	hourly, err := histogram(base(), "%H", hourLabels())
	if err != nil {
		return nil, err
	}
	summary.Hourly = hourly

	labels, expr := bucketLabels(granularity, start, end)
	buckets, err := histogram(base(), expr, labels)
	if err != nil {
		return nil, err
	}
	summary.Buckets = buckets

	return summary, nil
}

// histogram groups the filtered events by a strftime bucket and area type,
// then folds the rows onto the pre-generated label list.
func histogram(q *gorm.DB, expr string, labels []string) ([]HistogramBin, error) {
	var rows []bucketRow
	err := q.
		Select(fmt.Sprintf("strftime('%s', counting_events.timestamp) AS bucket, areas.type AS type, COUNT(*) AS count", expr)).
		Group("bucket, areas.type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate histogram: %w", err)
	}

	index := make(map[string]*HistogramBin, len(labels))
	bins := make([]HistogramBin, len(labels))
	for i, label := range labels {
		bins[i] = HistogramBin{Label: label}
		index[label] = &bins[i]
	}
	for _, row := range rows {
		bin, ok := index[row.Bucket]
		if !ok {
			continue
		}
		switch row.Type {
		case models.AreaTypePeople:
			bin.People += row.Count
		case models.AreaTypeVehicles:
			bin.Vehicles += row.Count
		}
	}
	return bins, nil
}
