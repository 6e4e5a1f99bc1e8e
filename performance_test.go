package advisor

import "testing"

func TestNewPerformanceReportEmpty(t *testing.T) {
	report := NewPerformanceReport(nil)
	if report.TotalResponses != 0 || report.HelpfulResponses != 0 {
		t.Errorf("empty report = %+v", report)
	}
	if report.SatisfactionRate != 0 {
		t.Errorf("SatisfactionRate = %f, want 0", report.SatisfactionRate)
	}
	if report.RecentFeedback == nil {
		t.Error("RecentFeedback should be an empty slice, not nil")
	}
}

func TestNewPerformanceReport(t *testing.T) {
	fbs := []Feedback{
		{ID: "f1", ResponseID: "r1", Type: FeedbackLike},
		{ID: "f2", ResponseID: "r2", Type: FeedbackDislike},
		{ID: "f3", ResponseID: "r3", Type: FeedbackLike},
		{ID: "f4", ResponseID: "r4", Type: FeedbackLike},
	}

	report := NewPerformanceReport(fbs)
	if report.TotalResponses != 4 {
		t.Errorf("TotalResponses = %d, want 4", report.TotalResponses)
	}
	if report.HelpfulResponses != 3 {
		t.Errorf("HelpfulResponses = %d, want 3", report.HelpfulResponses)
	}
	if report.SatisfactionRate != 75.0 {
		t.Errorf("SatisfactionRate = %f, want 75.0", report.SatisfactionRate)
	}
	if len(report.RecentFeedback) != 3 {
		t.Fatalf("RecentFeedback length = %d, want 3", len(report.RecentFeedback))
	}
	// Only likes are echoed, in input order.
	if report.RecentFeedback[0].ID != "f1" || report.RecentFeedback[2].ID != "f4" {
		t.Errorf("RecentFeedback = %+v", report.RecentFeedback)
	}
}

func TestNewPerformanceReportCapsRecent(t *testing.T) {
	var fbs []Feedback
	for i := 0; i < 25; i++ {
		fbs = append(fbs, Feedback{ID: NewID(), Type: FeedbackLike})
	}

	report := NewPerformanceReport(fbs)
	if report.HelpfulResponses != 25 {
		t.Errorf("HelpfulResponses = %d, want 25", report.HelpfulResponses)
	}
	if len(report.RecentFeedback) != maxRecentFeedback {
		t.Errorf("RecentFeedback length = %d, want %d", len(report.RecentFeedback), maxRecentFeedback)
	}
}
