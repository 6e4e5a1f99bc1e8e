package advisor

// maxRecentFeedback caps the feedback entries echoed in a report.
const maxRecentFeedback = 10

// NewPerformanceReport aggregates a feedback ledger into response-quality
// metrics. SatisfactionRate is a percentage in [0, 100]. RecentFeedback
// holds the newest liked entries, assuming the input is ordered newest
// first.
func NewPerformanceReport(fbs []Feedback) PerformanceReport {
	report := PerformanceReport{
		TotalResponses: len(fbs),
		RecentFeedback: []Feedback{},
	}
	for _, fb := range fbs {
		if fb.Type != FeedbackLike {
			continue
		}
		report.HelpfulResponses++
		if len(report.RecentFeedback) < maxRecentFeedback {
			report.RecentFeedback = append(report.RecentFeedback, fb)
		}
	}
	if report.TotalResponses > 0 {
		report.SatisfactionRate = float64(report.HelpfulResponses) / float64(report.TotalResponses) * 100
	}
	return report
}
