// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/moltwatch/internal/cache"
	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/metrics"
	"github.com/tomtom215/moltwatch/internal/models"
)

// Label thresholds for aggregate polarity.
const (
	positiveThreshold = 0.3
	negativeThreshold = -0.3
)

// sentimentLexicon maps lowercase words to polarity weights in [-1, 1].
// Small on purpose: agent posts are short and the dashboard only needs a
// coarse community mood, not per-post accuracy.
var sentimentLexicon = map[string]float64{
	// positive
	"good": 0.6, "great": 0.8, "excellent": 0.9, "amazing": 0.9,
	"awesome": 0.9, "love": 0.8, "loved": 0.8, "like": 0.4, "liked": 0.4,
	"best": 0.9, "better": 0.5, "nice": 0.5, "happy": 0.7, "glad": 0.6,
	"wonderful": 0.9, "fantastic": 0.9, "brilliant": 0.8, "beautiful": 0.7,
	"perfect": 0.9, "fun": 0.6, "interesting": 0.5, "fascinating": 0.7,
	"helpful": 0.6, "useful": 0.5, "impressive": 0.7, "exciting": 0.7,
	"excited": 0.7, "win": 0.6, "winning": 0.6, "success": 0.7,
	"successful": 0.7, "thanks": 0.5, "thank": 0.5, "grateful": 0.7,
	"appreciate": 0.6, "enjoy": 0.6, "enjoyed": 0.6, "cool": 0.5,
	"smart": 0.5, "clever": 0.6, "insightful": 0.7, "elegant": 0.6,
	"delightful": 0.8, "thriving": 0.7, "optimistic": 0.6, "hope": 0.4,
	"hopeful": 0.6, "promising": 0.6, "solid": 0.4, "strong": 0.4,
	"improved": 0.5, "improvement": 0.5, "progress": 0.5, "breakthrough": 0.8,

	// negative
	"bad": -0.6, "terrible": -0.9, "awful": -0.9, "horrible": -0.9,
	"hate": -0.8, "hated": -0.8, "worst": -0.9, "worse": -0.5,
	"sad": -0.6, "angry": -0.7, "annoying": -0.6, "annoyed": -0.6,
	"broken": -0.6, "fail": -0.7, "failed": -0.7, "failure": -0.7,
	"wrong": -0.5, "problem": -0.4, "problems": -0.4, "issue": -0.3,
	"issues": -0.3, "bug": -0.4, "bugs": -0.4, "crash": -0.6,
	"crashed": -0.6, "slow": -0.4, "useless": -0.7, "boring": -0.5,
	"stupid": -0.7, "dumb": -0.6, "ugly": -0.6, "disappointing": -0.7,
	"disappointed": -0.7, "frustrating": -0.7, "frustrated": -0.7,
	"confusing": -0.5, "confused": -0.4, "scary": -0.5, "afraid": -0.5,
	"fear": -0.5, "worried": -0.5, "worry": -0.4, "doubt": -0.3,
	"poor": -0.5, "lost": -0.4, "losing": -0.5, "mess": -0.5,
	"chaos": -0.5, "painful": -0.7, "pain": -0.5, "dead": -0.6,
	"dying": -0.7, "spam": -0.6, "scam": -0.8, "toxic": -0.7,
}

// negators invert the polarity of the following sentiment word.
var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true,
	"cannot": true, "cant": true, "dont": true, "doesnt": true,
	"wont": true, "isnt": true, "wasnt": true, "hardly": true,
}

// AnalyzeText returns the polarity of a text in [-1, 1]. Zero means neutral
// or no sentiment-bearing words found. A negator directly before a
// sentiment word inverts its weight.
func AnalyzeText(text string) float64 {
	if text == "" {
		return 0
	}

	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	var sum float64
	var matched int
	negate := false

	for _, w := range words {
		if negators[w] {
			negate = true
			continue
		}
		if weight, ok := sentimentLexicon[w]; ok {
			if negate {
				weight = -weight
			}
			sum += weight
			matched++
		}
		negate = false
	}

	if matched == 0 {
		return 0
	}
	polarity := sum / float64(matched)
	return math.Max(-1, math.Min(1, polarity))
}

// SentimentLabel maps a polarity to its aggregate label.
func SentimentLabel(polarity float64) string {
	switch {
	case polarity >= positiveThreshold:
		return models.SentimentPositive
	case polarity <= negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// CommunitySentiment computes the sentiment breakdown over a sample of
// posts created within the window. Results are cached for the configured
// TTL since the sample only shifts as new posts arrive.
func (a *Analyzer) CommunitySentiment(ctx context.Context, window time.Duration) (*models.SentimentSummary, error) {
	key := cache.GenerateKey("sentiment", window.String())
	if cached, ok := a.sentimentCache.Get(key); ok {
		return cached.(*models.SentimentSummary), nil
	}

	since := time.Now().UTC().Add(-window)
	texts, err := a.db.RecentPostTexts(ctx, since, a.cfg.SentimentSampleSize)
	if err != nil {
		return nil, err
	}

	summary := &models.SentimentSummary{
		Label:      models.SentimentNeutral,
		ComputedAt: time.Now().UTC(),
	}

	var sum float64
	for _, text := range texts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		polarity := AnalyzeText(text)
		sum += polarity
		switch SentimentLabel(polarity) {
		case models.SentimentPositive:
			summary.Positive++
		case models.SentimentNegative:
			summary.Negative++
		default:
			summary.Neutral++
		}
		summary.SampleSize++
	}

	if summary.SampleSize > 0 {
		avg := sum / float64(summary.SampleSize)
		summary.AvgPolarity = math.Round(avg*100) / 100
		summary.Label = SentimentLabel(avg)
	}

	metrics.SentimentSamplesAnalyzed.Add(float64(summary.SampleSize))
	logging.Debug().
		Int("sample_size", summary.SampleSize).
		Float64("avg_polarity", summary.AvgPolarity).
		Str("label", summary.Label).
		Msg("Community sentiment computed")

	a.sentimentCache.Set(key, summary)
	return summary, nil
}
