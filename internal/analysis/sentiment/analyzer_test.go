package sentiment

import "testing"

func TestAnalyzePositiveReview(t *testing.T) {
	decision := Analyze("Love this app, super easy to use!")
	if decision.Label != Positive {
		t.Fatalf("expected positive, got %s", decision.Label)
	}
	if decision.Positive <= 6 {
		t.Fatalf("expected exclamation boost, got %d", decision.Positive)
	}
}

func TestAnalyzeNegativeChineseReview(t *testing.T) {
	decision := Analyze("太贵了，而且经常卡顿")
	if decision.Label != Negative {
		t.Fatalf("expected negative, got %s", decision.Label)
	}
}

func TestAnalyzeMixedAndNeutral(t *testing.T) {
	if got := Analyze("Great features but way too expensive").Label; got != Mixed {
		t.Fatalf("expected mixed, got %s", got)
	}
	if got := Analyze("I use it on Tuesdays").Label; got != Neutral {
		t.Fatalf("expected neutral, got %s", got)
	}
	if got := Analyze("   ").Label; got != Neutral {
		t.Fatalf("expected neutral for blank text, got %s", got)
	}
}

func TestAnalyzeLines(t *testing.T) {
	tally := AnalyzeLines("Great support\n\nThe app keeps crashing\nI recommend it\nIt is blue\n")
	if tally.Positive != 2 || tally.Negative != 1 || tally.Neutral != 1 || tally.Mixed != 0 {
		t.Fatalf("unexpected tally %+v", tally)
	}
	if tally.Total() != 4 {
		t.Fatalf("expected 4 lines, got %d", tally.Total())
	}
}

func TestTallyOverall(t *testing.T) {
	cases := []struct {
		tally Tally
		want  Label
	}{
		{Tally{Neutral: 4}, Neutral},
		{Tally{Positive: 5, Negative: 1}, Positive},
		{Tally{Positive: 1, Negative: 3}, Negative},
		{Tally{Positive: 3, Negative: 2}, Mixed},
	}
	for _, tc := range cases {
		if got := tc.tally.Overall(); got != tc.want {
			t.Fatalf("%+v: expected %s, got %s", tc.tally, tc.want, got)
		}
	}
}
