package analytics

import "sort"

const dateLayout = "2006-01-02"

// BuildReport aggregates raw rows into the dashboard report. Invoices,
// jobs, and feedback are expected to cover [window.PrevStart, window.End);
// clients cover the organization's full history so acquisition and
// retention can be split.
func BuildReport(w Window, clients []ClientRow, invoices []InvoiceRow, jobs []JobRow, feedback []FeedbackRow) Report {
	var report Report

	// Revenue: current window vs the window before it.
	var currentRevenue, previousRevenue float64
	revenueByDate := make(map[string]float64)
	for _, inv := range invoices {
		if inv.Date.Before(w.Start) {
			previousRevenue += inv.Amount
			continue
		}
		currentRevenue += inv.Amount
		day := inv.Date.Format(dateLayout)
		revenueByDate[day] += inv.Amount
		if inv.Status == "pending" {
			report.PendingInvoices++
		}
	}
	report.TotalRevenue = currentRevenue
	report.RevenueTrend = calculateTrend(currentRevenue, previousRevenue)
	report.RevenueData = sortedRevenue(revenueByDate)

	// Client acquisition and retention by signup day.
	var newClients, previousNewClients int
	acquisitionByDate := make(map[string]*AcquisitionPoint)
	for _, c := range clients {
		if c.Active {
			report.ActiveClients++
		}
		day := c.CreatedAt.Format(dateLayout)
		point, ok := acquisitionByDate[day]
		if !ok {
			point = &AcquisitionPoint{Date: day}
			acquisitionByDate[day] = point
		}
		if !c.CreatedAt.Before(w.Start) {
			newClients++
			point.NewClients++
		} else {
			if !c.CreatedAt.Before(w.PrevStart) {
				previousNewClients++
			}
			point.ReturningClients++
		}
	}
	report.NewClients = newClients
	report.ClientsTrend = calculateTrend(float64(newClients), float64(previousNewClients))
	report.ClientAcquisition = sortedAcquisition(acquisitionByDate)

	// Jobs: breakdown, averages, top performers.
	type serviceRevenue struct {
		current  float64
		previous float64
	}
	byService := make(map[string]*serviceRevenue)
	var currentJobTotal, previousJobTotal float64
	var currentJobCount, previousJobCount int
	for _, job := range jobs {
		rev, ok := byService[job.ServiceName]
		if !ok {
			rev = &serviceRevenue{}
			byService[job.ServiceName] = rev
		}
		if job.Date.Before(w.Start) {
			rev.previous += job.Amount
			previousJobTotal += job.Amount
			previousJobCount++
			continue
		}
		rev.current += job.Amount
		currentJobTotal += job.Amount
		currentJobCount++
		report.CompletedJobs++
	}
	if currentJobCount > 0 {
		report.AverageJobValue = currentJobTotal / float64(currentJobCount)
	}
	var previousAverage float64
	if previousJobCount > 0 {
		previousAverage = previousJobTotal / float64(previousJobCount)
	}
	report.JobValueTrend = calculateTrend(report.AverageJobValue, previousAverage)

	for name, rev := range byService {
		if rev.current == 0 {
			continue
		}
		report.ServicesBreakdown = append(report.ServicesBreakdown, ServiceSlice{Name: name, Value: rev.current})
		report.TopServices = append(report.TopServices, TopService{
			Name:    name,
			Revenue: rev.current,
			Growth:  calculateTrend(rev.current, rev.previous),
		})
	}
	sort.Slice(report.ServicesBreakdown, func(i, j int) bool {
		return report.ServicesBreakdown[i].Value > report.ServicesBreakdown[j].Value
	})
	sort.Slice(report.TopServices, func(i, j int) bool {
		return report.TopServices[i].Revenue > report.TopServices[j].Revenue
	})
	if len(report.TopServices) > 5 {
		report.TopServices = report.TopServices[:5]
	}

	// Satisfaction: mean rating, current window vs previous.
	var currentRatingSum, previousRatingSum int
	var currentRatingCount, previousRatingCount int
	histogram := make(map[int]int)
	for _, f := range feedback {
		if f.CreatedAt.Before(w.Start) {
			previousRatingSum += f.Rating
			previousRatingCount++
			continue
		}
		currentRatingSum += f.Rating
		currentRatingCount++
		histogram[f.Rating]++
	}
	if currentRatingCount > 0 {
		report.CustomerSatisfaction = float64(currentRatingSum) / float64(currentRatingCount)
	}
	var previousSatisfaction float64
	if previousRatingCount > 0 {
		previousSatisfaction = float64(previousRatingSum) / float64(previousRatingCount)
	}
	report.SatisfactionTrend = calculateTrend(report.CustomerSatisfaction, previousSatisfaction)
	for rating := 1; rating <= 5; rating++ {
		if count, ok := histogram[rating]; ok {
			report.CustomerFeedback = append(report.CustomerFeedback, RatingBucket{Rating: rating, Count: count})
		}
	}

	return report
}

// BuildSummary aggregates the lightweight dashboard numbers over the
// organization's full history, with revenue grouped by day.
func BuildSummary(clients []ClientRow, invoices []InvoiceRow, jobs []JobRow) Summary {
	var s Summary
	revenueByDate := make(map[string]float64)
	for _, inv := range invoices {
		s.TotalRevenue += inv.Amount
		revenueByDate[inv.Date.Format(dateLayout)] += inv.Amount
		if inv.Status == "pending" {
			s.PendingInvoices++
		}
	}
	for _, c := range clients {
		if c.Active {
			s.ActiveClients++
		}
	}
	s.CompletedJobs = len(jobs)
	s.RevenueData = sortedRevenue(revenueByDate)
	return s
}

func sortedRevenue(byDate map[string]float64) []RevenuePoint {
	points := make([]RevenuePoint, 0, len(byDate))
	for date, revenue := range byDate {
		points = append(points, RevenuePoint{Date: date, Revenue: revenue})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func sortedAcquisition(byDate map[string]*AcquisitionPoint) []AcquisitionPoint {
	points := make([]AcquisitionPoint, 0, len(byDate))
	for _, point := range byDate {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}
