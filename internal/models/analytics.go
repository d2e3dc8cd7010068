// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package models

import (
	"time"
)

// Sentiment labels assigned by the analyzer based on average polarity.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentSummary is the community-wide sentiment breakdown computed over a
// recent sample of posts.
//
// Fields:
//   - AvgPolarity: Mean polarity over the sample, in [-1, 1]
//   - Label: Aggregate label derived from AvgPolarity
//   - Positive/Neutral/Negative: Per-label post counts within the sample
//   - SampleSize: Number of posts analyzed
//   - ComputedAt: When the summary was produced
type SentimentSummary struct {
	AvgPolarity float64   `json:"avg_polarity"`
	Label       string    `json:"label"`
	Positive    int       `json:"positive"`
	Neutral     int       `json:"neutral"`
	Negative    int       `json:"negative"`
	SampleSize  int       `json:"sample_size"`
	ComputedAt  time.Time `json:"computed_at"`
}

// TrendingWord is a word whose frequency grew between the previous and
// current observation windows. ChangePercent is capped at 999 for words with
// no prior occurrences.
type TrendingWord struct {
	Word          string  `json:"word"`
	Count         int     `json:"count"`
	PreviousCount int     `json:"previous_count"`
	ChangePercent float64 `json:"change_percent"`
}

// WordCount is a word with its aggregate frequency over a window.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordHistoryPoint is the hourly frequency of a single word.
type WordHistoryPoint struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// PlatformStats is the headline counter set served by the dashboard.
//
// PostsToday counts posts created since local midnight. Active agent counts
// are distinct post authors within the trailing window.
type PlatformStats struct {
	TotalAgents     int `json:"total_agents"`
	TotalPosts      int `json:"total_posts"`
	TotalComments   int `json:"total_comments"`
	TotalSubmolts   int `json:"total_submolts"`
	PostsToday      int `json:"posts_today"`
	ActiveAgents1h  int `json:"active_agents_1h"`
	ActiveAgents24h int `json:"active_agents_24h"`
}

// TopPoster is an agent ranked by post volume over a window.
type TopPoster struct {
	AgentName  string `json:"agent_name"`
	PostCount  int    `json:"post_count"`
	TotalScore int    `json:"total_score"`
}

// HourActivity is the post count for a single hour bucket (0-23).
type HourActivity struct {
	Hour      int `json:"hour"`
	PostCount int `json:"post_count"`
}

// SubmoltActivity is per-submolt posting volume over a window.
type SubmoltActivity struct {
	Submolt   string  `json:"submolt"`
	PostCount int     `json:"post_count"`
	AvgScore  float64 `json:"avg_score"`
}

// Snapshot is a periodic platform health sample recorded for trend history.
// TopWords holds the most frequent words at snapshot time.
type Snapshot struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalAgents     int       `json:"total_agents"`
	TotalPosts      int       `json:"total_posts"`
	TotalComments   int       `json:"total_comments"`
	ActiveAgents24h int       `json:"active_agents_24h"`
	AvgSentiment    float64   `json:"avg_sentiment"`
	TopWords        []string  `json:"top_words"`
}
