package sentiment

import (
	"strings"
)

// Label 表示一段评论文本的整体倾向。
type Label string

const (
	Neutral  Label = "neutral"
	Positive Label = "positive"
	Negative Label = "negative"
	Mixed    Label = "mixed"
)

// Decision 给出单段文本的倾向以及两个方向的得分。
type Decision struct {
	Label    Label
	Positive int
	Negative int
}

// Tally 统计多行评论的倾向分布。
type Tally struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Mixed    int `json:"mixed"`
	Neutral  int `json:"neutral"`
}

// Total is the number of classified lines.
func (t Tally) Total() int {
	return t.Positive + t.Negative + t.Mixed + t.Neutral
}

// Overall 返回占多数的倾向，评论全为中性时返回Neutral。
func (t Tally) Overall() Label {
	switch {
	case t.Positive == 0 && t.Negative == 0:
		return Neutral
	case t.Positive > 2*t.Negative:
		return Positive
	case t.Negative > 2*t.Positive:
		return Negative
	default:
		return Mixed
	}
}

var keywordBuckets = map[Label][]string{
	Positive: {
		"love", "great", "excellent", "amazing", "awesome", "perfect", "easy to use", "recommend",
		"helpful", "fast", "reliable", "worth", "happy", "satisfied", "intuitive", "best", "good value",
		"喜欢", "满意", "好用", "推荐", "方便", "划算", "靠谱", "太棒了",
	},
	Negative: {
		"hate", "terrible", "awful", "broken", "bug", "crash", "slow", "expensive", "overpriced",
		"confusing", "refund", "disappointed", "waste", "worst", "difficult", "frustrating", "cancel",
		"poor", "失望", "难用", "太贵", "卡顿", "退款", "垃圾", "崩溃",
	},
}

// exclamations amplify whichever side already leads.
const exclamationBoost = 1

// Analyze 根据关键词为一段文本打分。
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Label: Neutral}
	}

	scores := make(map[Label]int, len(keywordBuckets))
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if n := strings.Count(text, "!") + strings.Count(text, "！"); n > 0 {
		switch {
		case scores[Positive] > scores[Negative]:
			scores[Positive] += n * exclamationBoost
		case scores[Negative] > scores[Positive]:
			scores[Negative] += n * exclamationBoost
		}
	}

	d := Decision{Positive: scores[Positive], Negative: scores[Negative]}
	switch {
	case d.Positive == 0 && d.Negative == 0:
		d.Label = Neutral
	case d.Positive > 0 && d.Negative > 0:
		d.Label = Mixed
	case d.Positive > 0:
		d.Label = Positive
	default:
		d.Label = Negative
	}
	return d
}

// AnalyzeLines 把每个非空行当作一条评论分别分类。
func AnalyzeLines(text string) Tally {
	var t Tally
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch Analyze(line).Label {
		case Positive:
			t.Positive++
		case Negative:
			t.Negative++
		case Mixed:
			t.Mixed++
		default:
			t.Neutral++
		}
	}
	return t
}
