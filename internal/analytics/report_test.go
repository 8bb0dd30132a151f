package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() Window {
	end := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -1, 0)
	return Window{Start: start, End: end, PrevStart: start.Add(-end.Sub(start))}
}

func TestCalculateTrend(t *testing.T) {
	assert.Equal(t, 50.0, calculateTrend(150, 100))
	assert.Equal(t, -25.0, calculateTrend(75, 100))
	assert.Equal(t, 0.0, calculateTrend(100, 0), "zero previous yields zero, not infinity")
}

func TestWindowFor(t *testing.T) {
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	week := WindowFor(RangeWeek, now)
	assert.Equal(t, now.AddDate(0, 0, -7), week.Start)
	assert.Equal(t, now.AddDate(0, 0, -14), week.PrevStart)

	year := WindowFor(RangeYear, now)
	assert.Equal(t, now.AddDate(-1, 0, 0), year.Start)
}

func TestParseTimeRange(t *testing.T) {
	for _, tr := range TimeRanges {
		parsed, err := ParseTimeRange(string(tr))
		require.NoError(t, err)
		assert.Equal(t, tr, parsed)
	}
	_, err := ParseTimeRange("fortnight")
	require.Error(t, err)
}

func TestBuildReportRevenueAndTrend(t *testing.T) {
	w := testWindow()
	invoices := []InvoiceRow{
		{Amount: 300, Status: "paid", Date: w.Start.AddDate(0, 0, 2)},
		{Amount: 200, Status: "pending", Date: w.Start.AddDate(0, 0, 5)},
		{Amount: 250, Status: "paid", Date: w.PrevStart.AddDate(0, 0, 3)},
	}

	report := BuildReport(w, nil, invoices, nil, nil)
	assert.Equal(t, 500.0, report.TotalRevenue)
	assert.Equal(t, 100.0, report.RevenueTrend, "(500-250)/250*100")
	assert.Equal(t, 1, report.PendingInvoices)
	require.Len(t, report.RevenueData, 2)
	assert.Less(t, report.RevenueData[0].Date, report.RevenueData[1].Date)
}

func TestBuildReportClientAcquisition(t *testing.T) {
	w := testWindow()
	clients := []ClientRow{
		{ID: 1, Active: true, CreatedAt: w.Start.AddDate(0, 0, 1)},
		{ID: 2, Active: true, CreatedAt: w.Start.AddDate(0, 0, 1)},
		{ID: 3, Active: false, CreatedAt: w.PrevStart.AddDate(0, 0, 1)},
		{ID: 4, Active: true, CreatedAt: w.PrevStart.AddDate(0, 0, -30)},
	}

	report := BuildReport(w, clients, nil, nil, nil)
	assert.Equal(t, 2, report.NewClients)
	assert.Equal(t, 100.0, report.ClientsTrend, "2 new vs 1 in previous window")
	assert.Equal(t, 3, report.ActiveClients)

	var newTotal, returningTotal int
	for _, point := range report.ClientAcquisition {
		newTotal += point.NewClients
		returningTotal += point.ReturningClients
	}
	assert.Equal(t, 2, newTotal)
	assert.Equal(t, 2, returningTotal)
}

func TestBuildReportTopServicesCapAtFive(t *testing.T) {
	w := testWindow()
	names := []string{"Wash", "Wax", "Polish", "Coating", "Interior", "Engine Bay", "Headlights"}
	var jobs []JobRow
	for i, name := range names {
		jobs = append(jobs, JobRow{ServiceName: name, Amount: float64((i + 1) * 100), Date: w.Start.AddDate(0, 0, 1)})
	}

	report := BuildReport(w, nil, nil, jobs, nil)
	require.Len(t, report.TopServices, 5)
	assert.Equal(t, "Headlights", report.TopServices[0].Name)
	assert.Equal(t, 700.0, report.TopServices[0].Revenue)
	assert.Len(t, report.ServicesBreakdown, 7)
	assert.Equal(t, 7, report.CompletedJobs)
}

func TestBuildReportServiceGrowth(t *testing.T) {
	w := testWindow()
	jobs := []JobRow{
		{ServiceName: "Coating", Amount: 600, Date: w.Start.AddDate(0, 0, 3)},
		{ServiceName: "Coating", Amount: 400, Date: w.PrevStart.AddDate(0, 0, 3)},
	}

	report := BuildReport(w, nil, nil, jobs, nil)
	require.Len(t, report.TopServices, 1)
	assert.Equal(t, 50.0, report.TopServices[0].Growth, "(600-400)/400*100")
	assert.Equal(t, 600.0, report.AverageJobValue)
	assert.Equal(t, 50.0, report.JobValueTrend)
}

func TestBuildReportSatisfactionHistogram(t *testing.T) {
	w := testWindow()
	feedback := []FeedbackRow{
		{Rating: 5, CreatedAt: w.Start.AddDate(0, 0, 1)},
		{Rating: 4, CreatedAt: w.Start.AddDate(0, 0, 2)},
		{Rating: 5, CreatedAt: w.Start.AddDate(0, 0, 3)},
		{Rating: 3, CreatedAt: w.PrevStart.AddDate(0, 0, 1)},
	}

	report := BuildReport(w, nil, nil, nil, feedback)
	assert.InDelta(t, 4.667, report.CustomerSatisfaction, 0.001)
	assert.InDelta(t, 55.556, report.SatisfactionTrend, 0.001)
	require.Len(t, report.CustomerFeedback, 2)
	assert.Equal(t, RatingBucket{Rating: 4, Count: 1}, report.CustomerFeedback[0])
	assert.Equal(t, RatingBucket{Rating: 5, Count: 2}, report.CustomerFeedback[1])
}

func TestBuildSummary(t *testing.T) {
	clients := []ClientRow{
		{ID: 1, Active: true},
		{ID: 2, Active: false},
	}
	invoices := []InvoiceRow{
		{Amount: 100, Status: "pending", Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: 400, Status: "paid", Date: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)},
	}
	jobs := []JobRow{{ServiceName: "Wash", Amount: 100}}

	s := BuildSummary(clients, invoices, jobs)
	assert.Equal(t, 500.0, s.TotalRevenue)
	assert.Equal(t, 1, s.ActiveClients)
	assert.Equal(t, 1, s.PendingInvoices)
	assert.Equal(t, 1, s.CompletedJobs)
	require.Len(t, s.RevenueData, 1, "same-day invoices collapse to one point")
	assert.Equal(t, 500.0, s.RevenueData[0].Revenue)
}
