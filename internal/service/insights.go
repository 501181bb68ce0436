package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
)

const (
	topIssueCount          = 5
	signatureWords         = 3
	criticalAdviceCutoff   = 5
	backlogAdviceMinAlerts = 10
	backlogAdviceRate      = 0.5
)

// InsightService summarizes alert history into trend, ranking, and
// recommendation data. Read-only: it never writes to any store.
type InsightService struct {
	alerts repository.AlertRepo
	now    func() time.Time
}

func NewInsightService(alerts repository.AlertRepo) *InsightService {
	return &InsightService{alerts: alerts, now: time.Now}
}

// Summarize aggregates the alert history of the given buildings over the
// period ("week", "month", "quarter", "year"; default month).
func (s *InsightService) Summarize(ctx context.Context, buildingIDs []string, period string) (models.AlertInsights, error) {
	since := s.periodStart(period)

	var all []models.Alert
	for _, id := range buildingIDs {
		alerts, err := s.alerts.List(ctx, repository.AlertFilter{BuildingID: id, Since: since})
		if err != nil {
			return models.AlertInsights{}, fmt.Errorf("list alerts for %s: %w", id, err)
		}
		all = append(all, alerts...)
	}

	insights := models.AlertInsights{
		Period:      normalizePeriod(period),
		Since:       since,
		TotalAlerts: len(all),
		// Trend classification is a placeholder until enough history
		// accrues to compare periods.
		Trend: "stable",
	}

	var unresolvedCritical int
	for _, a := range all {
		if a.Type == models.AlertCritical {
			insights.CriticalAlerts++
			if !a.IsResolved {
				unresolvedCritical++
			}
		}
		if a.IsResolved {
			insights.ResolvedAlerts++
		}
	}
	if insights.TotalAlerts > 0 {
		insights.ResolutionRate = float64(insights.ResolvedAlerts) / float64(insights.TotalAlerts)
	}

	insights.TopIssues = topIssues(all)
	insights.Recommendations = recommendations(insights, unresolvedCritical)
	return insights, nil
}

func (s *InsightService) periodStart(period string) time.Time {
	now := s.now().UTC()
	switch normalizePeriod(period) {
	case models.PeriodWeek:
		return now.AddDate(0, 0, -7)
	case models.PeriodQuarter:
		return now.AddDate(0, -3, 0)
	case models.PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

func normalizePeriod(period string) string {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case models.PeriodWeek:
		return models.PeriodWeek
	case models.PeriodQuarter:
		return models.PeriodQuarter
	case models.PeriodYear:
		return models.PeriodYear
	default:
		return models.PeriodMonth
	}
}

// topIssues groups alerts by the first three words of their title and
// returns the five most frequent signatures, descending.
func topIssues(alerts []models.Alert) []models.IssueSignature {
	counts := make(map[string]int)
	for _, a := range alerts {
		counts[titleSignature(a.Title)]++
	}

	out := make([]models.IssueSignature, 0, len(counts))
	for sig, n := range counts {
		out = append(out, models.IssueSignature{Signature: sig, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Signature < out[j].Signature
	})
	if len(out) > topIssueCount {
		out = out[:topIssueCount]
	}
	return out
}

func titleSignature(title string) string {
	words := strings.Fields(title)
	if len(words) > signatureWords {
		words = words[:signatureWords]
	}
	return strings.Join(words, " ")
}

func recommendations(in models.AlertInsights, unresolvedCritical int) []string {
	var out []string
	if in.CriticalAlerts > criticalAdviceCutoff {
		out = append(out, "High number of critical alerts in this period: schedule a preventive maintenance review.")
	}
	if in.TotalAlerts >= backlogAdviceMinAlerts && in.ResolutionRate < backlogAdviceRate {
		out = append(out, "Less than half of the alerts were resolved: review the open alert backlog.")
	}
	if unresolvedCritical > 0 {
		out = append(out, fmt.Sprintf("%d critical alert(s) are still unresolved and need immediate attention.", unresolvedCritical))
	}
	return out
}
