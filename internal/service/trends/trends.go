// Package trends serves the market trend dashboard from a fixed catalog.
package trends

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zhouzirui/persona-studio/backend/internal/apperr"
)

const DefaultTimeframe = "30d"

// timeframe scales 30-day mention counts.
var timeframes = map[string]struct{ num, den int }{
	"7d":  {7, 30},
	"30d": {1, 1},
	"90d": {3, 1},
}

// Filters narrows the trending topics. Empty fields match everything.
type Filters struct {
	Industry  string `json:"industry,omitempty"`
	Region    string `json:"region,omitempty"`
	Timeframe string `json:"timeframe"`
}

// Report is the dashboard payload.
type Report struct {
	TrendingTopics     []Topic             `json:"trending_topics"`
	ContentPerformance []ContentFormat     `json:"content_performance"`
	Demographics       []AgeGroup          `json:"demographics"`
	EngagementMetrics  []MonthlyEngagement `json:"engagement_metrics"`
	IndustryInsights   []IndustryInsight   `json:"industry_insights"`
}

// Normalize trims the filters and fills the default timeframe.
func (f Filters) Normalize() (Filters, error) {
	f.Industry = strings.TrimSpace(f.Industry)
	f.Region = strings.TrimSpace(f.Region)
	f.Timeframe = strings.ToLower(strings.TrimSpace(f.Timeframe))
	if f.Timeframe == "" {
		f.Timeframe = DefaultTimeframe
	}
	if _, ok := timeframes[f.Timeframe]; !ok {
		return f, fmt.Errorf("%w: timeframe must be one of 7d, 30d, 90d", apperr.ErrValidation)
	}
	return f, nil
}

// Query returns the report for f along with the normalized filters.
// Only trending topics are filtered; the other sections are market-wide.
func Query(f Filters) (Report, Filters, error) {
	f, err := f.Normalize()
	if err != nil {
		return Report{}, f, err
	}
	scale := timeframes[f.Timeframe]

	matched := make([]Topic, 0, len(topics))
	for _, t := range topics {
		if f.Industry != "" && !containsFold(t.Industries, f.Industry) {
			continue
		}
		if f.Region != "" && !containsFold(t.Regions, f.Region) {
			continue
		}
		t.Mentions = t.Mentions * scale.num / scale.den
		t.Regions = slices.Clone(t.Regions)
		t.Industries = slices.Clone(t.Industries)
		matched = append(matched, t)
	}

	insights := make([]IndustryInsight, len(industryInsights))
	for i, in := range industryInsights {
		in.TopChannels = slices.Clone(in.TopChannels)
		insights[i] = in
	}

	return Report{
		TrendingTopics:     matched,
		ContentPerformance: slices.Clone(contentFormats),
		Demographics:       slices.Clone(demographics),
		EngagementMetrics:  slices.Clone(engagement),
		IndustryInsights:   insights,
	}, f, nil
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}
