// Package analytics derives the dashboard figures and chart series from a
// snapshot of reports.
package analytics

import (
	"sort"
	"strconv"
	"strings"

	"aduan/internal/feed"
	"aduan/internal/report"
)

const (
	// RecentLimit is how many reports the dashboard lists.
	RecentLimit = 5
	// TopLocationLimit is how many locations the bar chart shows.
	TopLocationLimit = 5
)

// Bucket is one labelled count in a chart series.
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary holds the dashboard headline figures.
type Summary struct {
	Total      int             `json:"total"`
	New        int             `json:"new"`
	InProgress int             `json:"inProgress"`
	Done       int             `json:"done"`
	Rejected   int             `json:"rejected"`
	Pending    int             `json:"pending"` // optimistic records awaiting the feed
	Recent     []report.Report `json:"recent"`
}

// Summarize counts reports per status and picks the most recent ones.
// reports is expected newest first, as the repository returns it.
func Summarize(reports []report.Report) Summary {
	s := Summary{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case report.StatusNew:
			s.New++
		case report.StatusInProgress:
			s.InProgress++
		case report.StatusDone:
			s.Done++
		case report.StatusRejected:
			s.Rejected++
		}
		if r.IsPending() {
			s.Pending++
		}
	}

	n := len(reports)
	if n > RecentLimit {
		n = RecentLimit
	}
	s.Recent = make([]report.Report, n)
	copy(s.Recent, reports[:n])
	return s
}

// StatusBreakdown returns one bucket per known status in display order,
// leaving out statuses with no reports.
func StatusBreakdown(reports []report.Report) []Bucket {
	counts := make(map[report.Status]int)
	for _, r := range reports {
		counts[r.Status]++
	}

	out := make([]Bucket, 0, len(report.Statuses))
	for _, s := range report.Statuses {
		if counts[s] > 0 {
			out = append(out, Bucket{Name: string(s), Value: counts[s]})
		}
	}
	return out
}

// TopLocations returns the locations with the most reports, highest first.
// Ties keep the order in which locations were first seen.
func TopLocations(reports []report.Report, limit int) []Bucket {
	counts := make(map[string]int)
	var order []string
	for _, r := range reports {
		loc := r.Location
		if _, ok := counts[loc]; !ok {
			order = append(order, loc)
		}
		counts[loc]++
	}

	out := make([]Bucket, 0, len(order))
	for _, loc := range order {
		out = append(out, Bucket{Name: loc, Value: counts[loc]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MonthlyTrend counts reports per MM/YYYY bucket, oldest month first.
// Reports whose date is not DD/MM/YYYY are left out.
func MonthlyTrend(reports []report.Report) []Bucket {
	counts := make(map[string]int)
	for _, r := range reports {
		if key := feed.MonthKey(r.ReportedAt); key != "" {
			counts[key]++
		}
	}

	out := make([]Bucket, 0, len(counts))
	for k, v := range counts {
		out = append(out, Bucket{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		mi, yi := monthYear(out[i].Name)
		mj, yj := monthYear(out[j].Name)
		if yi != yj {
			return yi < yj
		}
		if mi != mj {
			return mi < mj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func monthYear(key string) (int, int) {
	m, y, _ := strings.Cut(key, "/")
	month, _ := strconv.Atoi(m)
	year, _ := strconv.Atoi(y)
	return month, year
}

// Analytics bundles every chart series.
type Analytics struct {
	StatusBreakdown []Bucket `json:"statusBreakdown"`
	TopLocations    []Bucket `json:"topLocations"`
	MonthlyTrend    []Bucket `json:"monthlyTrend"`
}

// Compute builds all chart series from one snapshot.
func Compute(reports []report.Report) Analytics {
	return Analytics{
		StatusBreakdown: StatusBreakdown(reports),
		TopLocations:    TopLocations(reports, TopLocationLimit),
		MonthlyTrend:    MonthlyTrend(reports),
	}
}
