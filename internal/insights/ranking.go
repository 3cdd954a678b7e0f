package insights

import (
	"sort"
	"strings"
)

// SortField selects the metric a page table is ordered by.
type SortField string

const (
	SortRevenue   SortField = "revenue"
	SortRPM       SortField = "rpm"
	SortPageviews SortField = "pageviews"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParseSortField accepts exactly revenue, rpm or pageviews; empty means revenue.
func ParseSortField(raw string) (SortField, bool) {
	switch SortField(raw) {
	case "", SortRevenue:
		return SortRevenue, true
	case SortRPM:
		return SortRPM, true
	case SortPageviews:
		return SortPageviews, true
	default:
		return "", false
	}
}

// PageQuery filters and windows a page table.
type PageQuery struct {
	Search string
	Sort   SortField
	Page   int
	Limit  int
}

// Offset is the zero-based index of the first row on the requested page, or -1 when
// the page starts beyond total rows.
func (q PageQuery) Offset(total int) int {
	if q.Page-1 >= (total+q.Limit-1)/q.Limit {
		return -1
	}
	return (q.Page - 1) * q.Limit
}

func (q PageQuery) normalized() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Sort == "" {
		q.Sort = SortRevenue
	}
	return q
}

// PageRow is one line of the top pages table.
type PageRow struct {
	PageKey      string
	URL          string
	Pageviews    int64
	Revenue      float64
	RPM          float64
	TrendPercent *float64
}

// PageList is one page of rows plus the size of the whole filtered set.
type PageList struct {
	Items []PageRow
	Total int
}

// TrendPercent is the revenue change against the previous window to one decimal,
// nil when there is no positive previous revenue to compare with.
func TrendPercent(current, previous float64) *float64 {
	if previous <= 0 {
		return nil
	}
	v := round((current-previous)/previous*100, 1)
	return &v
}

// RankedRows filters by case-insensitive URL substring and sorts descending on field,
// breaking ties by URL ascending. The search term is matched as given, whitespace included.
func RankedRows(stats []PageStat, previous map[string]float64, search string, field SortField) []PageRow {
	needle := strings.ToLower(search)
	filtered := make([]PageStat, 0, len(stats))
	for _, s := range stats {
		if needle == "" || strings.Contains(strings.ToLower(s.URL), needle) {
			filtered = append(filtered, s)
		}
	}

	metric := metricFor(field)
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := metric(filtered[i]), metric(filtered[j])
		if a != b {
			return a > b
		}
		return filtered[i].URL < filtered[j].URL
	})

	rows := make([]PageRow, len(filtered))
	for i, s := range filtered {
		rows[i] = PageRow{
			PageKey:      EncodePageKey(s.URL),
			URL:          s.URL,
			Pageviews:    s.Pageviews,
			Revenue:      round(s.Revenue, 2),
			RPM:          s.RPM,
			TrendPercent: TrendPercent(s.Revenue, previous[s.URL]),
		}
	}
	return rows
}

// RankPages returns the requested page of RankedRows. Pages past the end are empty
// but still report the filtered total.
func RankPages(stats []PageStat, previous map[string]float64, q PageQuery) PageList {
	q = q.normalized()
	rows := RankedRows(stats, previous, q.Search, q.Sort)

	list := PageList{Items: []PageRow{}, Total: len(rows)}
	start := q.Offset(len(rows))
	if start < 0 {
		return list
	}
	end := start + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	list.Items = rows[start:end]
	return list
}

func metricFor(field SortField) func(PageStat) float64 {
	switch field {
	case SortRPM:
		return func(s PageStat) float64 { return s.RPM }
	case SortPageviews:
		return func(s PageStat) float64 { return float64(s.Pageviews) }
	default:
		return func(s PageStat) float64 { return s.Revenue }
	}
}
