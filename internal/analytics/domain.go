package analytics

import (
	"fmt"
	"time"
)

// TimeRange selects the reporting window.
type TimeRange string

const (
	RangeDay     TimeRange = "day"
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
)

// TimeRanges lists every supported window, in warmup order.
var TimeRanges = []TimeRange{RangeDay, RangeWeek, RangeMonth, RangeQuarter, RangeYear}

// ParseTimeRange validates a time-range token.
func ParseTimeRange(raw string) (TimeRange, error) {
	switch TimeRange(raw) {
	case RangeDay, RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return TimeRange(raw), nil
	}
	return "", fmt.Errorf("unknown time range %q", raw)
}

// Window is a reporting interval plus the equal-length interval that
// precedes it, used for trend comparisons.
type Window struct {
	Start     time.Time
	End       time.Time
	PrevStart time.Time
}

// WindowFor computes the window ending at now for a time range.
func WindowFor(tr TimeRange, now time.Time) Window {
	var start time.Time
	switch tr {
	case RangeDay:
		start = now.AddDate(0, 0, -1)
	case RangeWeek:
		start = now.AddDate(0, 0, -7)
	case RangeMonth:
		start = now.AddDate(0, -1, 0)
	case RangeQuarter:
		start = now.AddDate(0, -3, 0)
	case RangeYear:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, -1, 0)
	}
	return Window{
		Start:     start,
		End:       now,
		PrevStart: start.Add(-now.Sub(start)),
	}
}

// calculateTrend is the percentage movement from previous to current.
// A zero previous value yields 0, not infinity.
func calculateTrend(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// RevenuePoint is daily revenue, keyed by YYYY-MM-DD.
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// ServiceSlice is one service's share of the breakdown.
type ServiceSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AcquisitionPoint counts new versus returning clients per day.
type AcquisitionPoint struct {
	Date             string `json:"date"`
	NewClients       int    `json:"newClients"`
	ReturningClients int    `json:"returningClients"`
}

// TopService ranks a service by revenue with window-over-window growth.
type TopService struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Growth  float64 `json:"growth"`
}

// RatingBucket is one bar of the feedback histogram.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// Report is the detailed analytics dashboard payload.
type Report struct {
	TotalRevenue         float64            `json:"totalRevenue"`
	RevenueTrend         float64            `json:"revenueTrend"`
	NewClients           int                `json:"newClients"`
	ClientsTrend         float64            `json:"clientsTrend"`
	AverageJobValue      float64            `json:"averageJobValue"`
	JobValueTrend        float64            `json:"jobValueTrend"`
	CustomerSatisfaction float64            `json:"customerSatisfaction"`
	SatisfactionTrend    float64            `json:"satisfactionTrend"`
	ActiveClients        int                `json:"activeClients"`
	PendingInvoices      int                `json:"pendingInvoices"`
	CompletedJobs        int                `json:"completedJobs"`
	RevenueData          []RevenuePoint     `json:"revenueData"`
	ServicesBreakdown    []ServiceSlice     `json:"servicesBreakdown"`
	ClientAcquisition    []AcquisitionPoint `json:"clientAcquisitionRetention"`
	TopServices          []TopService       `json:"topPerformingServices"`
	CustomerFeedback     []RatingBucket     `json:"customerFeedback"`
}

// Summary is the lightweight dashboard payload: headline counters plus
// six months of revenue history.
type Summary struct {
	TotalRevenue    float64        `json:"totalRevenue"`
	ActiveClients   int            `json:"activeClients"`
	PendingInvoices int            `json:"pendingInvoices"`
	CompletedJobs   int            `json:"completedJobs"`
	RevenueData     []RevenuePoint `json:"revenueData"`
}

// ClientRow is the slice of a client record the aggregator needs.
type ClientRow struct {
	ID        int64
	Active    bool
	CreatedAt time.Time
}

// InvoiceRow is the slice of an invoice the aggregator needs.
type InvoiceRow struct {
	Amount float64
	Status string
	Date   time.Time
}

// JobRow is one completed-job ledger entry.
type JobRow struct {
	ServiceName string
	Amount      float64
	Date        time.Time
}

// FeedbackRow is one satisfaction rating.
type FeedbackRow struct {
	Rating    int
	CreatedAt time.Time
}
