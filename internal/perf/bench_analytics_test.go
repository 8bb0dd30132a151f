package perf

import (
	"fmt"
	"testing"
	"time"

	"github.com/glossworks/glossworks/internal/analytics"
)

// BenchmarkBuildReport exercises the aggregation over a year of data for
// a busy shop. The loader queries dominate production latency, but the
// in-memory pass should stay well under a millisecond.
func BenchmarkBuildReport(b *testing.B) {
	now := time.Date(2026, time.June, 30, 12, 0, 0, 0, time.UTC)
	w := analytics.WindowFor(analytics.RangeYear, now)

	clients := make([]analytics.ClientRow, 0, 400)
	for i := 0; i < 400; i++ {
		clients = append(clients, analytics.ClientRow{
			ID:        int64(i + 1),
			Active:    i%5 != 0,
			CreatedAt: w.PrevStart.Add(time.Duration(i) * 40 * time.Hour),
		})
	}

	invoices := make([]analytics.InvoiceRow, 0, 2000)
	jobs := make([]analytics.JobRow, 0, 2000)
	for i := 0; i < 2000; i++ {
		at := w.PrevStart.Add(time.Duration(i) * 8 * time.Hour)
		invoices = append(invoices, analytics.InvoiceRow{Amount: 45 + float64(i%7)*60, Status: "paid", Date: at})
		jobs = append(jobs, analytics.JobRow{
			ServiceName: fmt.Sprintf("Service %d", i%12),
			Amount:      45 + float64(i%7)*60,
			Date:        at,
		})
	}

	feedback := make([]analytics.FeedbackRow, 0, 600)
	for i := 0; i < 600; i++ {
		feedback = append(feedback, analytics.FeedbackRow{
			Rating:    1 + i%5,
			CreatedAt: w.PrevStart.Add(time.Duration(i) * 26 * time.Hour),
		})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		report := analytics.BuildReport(w, clients, invoices, jobs, feedback)
		if len(report.TopServices) == 0 {
			b.Fatal("empty report")
		}
	}
}
