// Moltwatch - Moltbook Observatory and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moltwatch

package analyzer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/moltwatch/internal/cache"
	"github.com/tomtom215/moltwatch/internal/logging"
	"github.com/tomtom215/moltwatch/internal/models"
)

// wordPattern matches plain alphabetic words with three or more characters.
var wordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// stopWords are common words excluded from trend detection.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "you": true, "they": true, "this": true, "that": true,
	"have": true, "has": true, "had": true, "does": true, "did": true,
	"but": true, "not": true, "what": true, "all": true, "would": true,
	"there": true, "their": true, "from": true, "with": true, "just": true,
	"been": true, "being": true, "can": true, "could": true, "will": true,
	"should": true, "may": true, "might": true, "must": true, "shall": true,
	"then": true, "else": true, "when": true, "where": true, "why": true,
	"how": true, "which": true, "who": true, "whom": true, "whose": true,
	"than": true, "too": true, "very": true, "much": true, "many": true,
	"some": true, "any": true, "nor": true, "only": true, "own": true,
	"same": true, "such": true, "also": true, "about": true, "into": true,
	"through": true, "during": true, "before": true, "after": true,
	"above": true, "below": true, "between": true, "under": true,
	"again": true, "further": true, "once": true, "here": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"these": true, "those": true, "your": true, "its": true, "his": true,
	"her": true, "our": true, "out": true, "down": true, "off": true,
	"over": true, "even": true, "now": true, "well": true, "back": true,
	"way": true, "new": true, "one": true, "two": true, "first": true,
	"like": true, "get": true, "got": true, "make": true, "made": true,
	"know": true, "think": true, "see": true, "come": true, "want": true,
	"look": true, "use": true, "find": true, "give": true, "tell": true,
	"try": true, "really": true, "still": true, "thing": true,
	"things": true, "something": true, "anything": true, "nothing": true,
}

// ExtractWords returns the meaningful words in a text: lowercased, three or
// more letters, stop words removed.
func ExtractWords(text string) []string {
	if text == "" {
		return nil
	}
	matches := wordPattern.FindAllString(strings.ToLower(text), -1)
	words := make([]string, 0, len(matches))
	for _, w := range matches {
		if !stopWords[w] {
			words = append(words, w)
		}
	}
	return words
}

// CountWords aggregates word occurrences across texts, keeping the top
// words by count. A zero or negative top returns all words.
func CountWords(texts []string, top int) map[string]int {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, w := range ExtractWords(text) {
			counts[w]++
		}
	}
	if top <= 0 || len(counts) <= top {
		return counts
	}

	type wc struct {
		word  string
		count int
	}
	all := make([]wc, 0, len(counts))
	for w, c := range counts {
		all = append(all, wc{w, c})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].count != all[j].count {
			return all[i].count > all[j].count
		}
		return all[i].word < all[j].word
	})

	kept := make(map[string]int, top)
	for _, e := range all[:top] {
		kept[e.word] = e.count
	}
	return kept
}

// UpdateWordFrequencies extracts words from posts fetched in the last hour
// and merges the top counts into the hourly frequency table.
func (a *Analyzer) UpdateWordFrequencies(ctx context.Context) error {
	oneHourAgo := time.Now().UTC().Add(-time.Hour)
	texts, err := a.db.PostTextsFetchedSince(ctx, oneHourAgo)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return nil
	}

	counts := CountWords(texts, wordFrequencyTopN)
	if len(counts) == 0 {
		return nil
	}

	hour := time.Now().UTC().Truncate(time.Hour)
	if err := a.db.UpdateWordFrequency(ctx, hour, counts); err != nil {
		return err
	}

	logging.Debug().
		Int("posts", len(texts)).
		Int("words", len(counts)).
		Time("hour", hour).
		Msg("Word frequencies updated")
	return nil
}

// wordFrequencyTopN caps how many distinct words one extraction pass
// contributes to the hourly table.
const wordFrequencyTopN = 100

// TrendingWords returns the words whose usage grew fastest between the
// previous and current windows. Results are cached.
func (a *Analyzer) TrendingWords(ctx context.Context, window time.Duration) ([]models.TrendingWord, error) {
	key := cache.GenerateKey("trending", window.String())
	if cached, ok := a.trendsCache.Get(key); ok {
		return cached.([]models.TrendingWord), nil
	}

	trending, err := a.db.TrendingWords(ctx, window, a.cfg.TrendMinCount, a.cfg.TrendTopWords)
	if err != nil {
		return nil, err
	}

	a.trendsCache.Set(key, trending)
	return trending, nil
}

// TopWords returns the most frequent words within the window. Results are
// cached.
func (a *Analyzer) TopWords(ctx context.Context, window time.Duration, limit int) ([]models.WordCount, error) {
	key := cache.GenerateKey("topwords", []interface{}{window.String(), limit})
	if cached, ok := a.trendsCache.Get(key); ok {
		return cached.([]models.WordCount), nil
	}

	words, err := a.db.TopWords(ctx, window, limit)
	if err != nil {
		return nil, err
	}

	a.trendsCache.Set(key, words)
	return words, nil
}

// WordHistory returns the hourly frequency series for a word. Not cached:
// it is a point lookup on an indexed table.
func (a *Analyzer) WordHistory(ctx context.Context, word string, window time.Duration) ([]models.WordHistoryPoint, error) {
	return a.db.WordHistory(ctx, strings.ToLower(word), window)
}
