/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "strings"

// CategoryResult is one line of a player's round breakdown.
type CategoryResult struct {
	Category string `json:"category"`
	Word     string `json:"word"`
	Unique   bool   `json:"unique"`
	Points   int    `json:"points"`
}

// RoundScore is the scoring outcome for one player in one round.
type RoundScore struct {
	Total               int              `json:"total"`
	WordsFound          int              `json:"wordsFound"`
	UniqueWords         int              `json:"uniqueWords"`
	AllCategoriesFilled bool             `json:"allCategoriesFilled"`
	Categories          []CategoryResult `json:"categories"`
}

// An answer counts as present once trimmed of surrounding whitespace;
// two answers are the same word when their trimmed forms match
// case-insensitively. Accents and punctuation compare literally.
func normalizeWord(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return strings.ToLower(trimmed), true
}

// ScoreRound computes every submitting player's score for one round.
//
// Each present answer earns 1 point, plus 1 more when no other answer in
// the round (from any player, in any category) normalizes to the same
// word. Filling every category earns +3; filling every category with
// nothing but unique words earns +5 on top. Pure and deterministic:
// identical inputs always produce identical output.
func ScoreRound(answers map[string]Answers, categories []string) map[string]RoundScore {
	// Frequency table over the full round corpus, across all categories.
	frequency := make(map[string]int)
	for _, playerAnswers := range answers {
		for _, raw := range playerAnswers {
			if word, ok := normalizeWord(raw); ok {
				frequency[word]++
			}
		}
	}

	results := make(map[string]RoundScore, len(answers))

	for playerID, playerAnswers := range answers {
		score := RoundScore{
			AllCategoriesFilled: true,
			Categories:          make([]CategoryResult, 0, len(categories)),
		}

		for _, category := range categories {
			result := CategoryResult{Category: category}

			word, ok := normalizeWord(playerAnswers[category])
			if !ok {
				score.AllCategoriesFilled = false
				score.Categories = append(score.Categories, result)
				continue
			}

			result.Word = strings.TrimSpace(playerAnswers[category])
			result.Points = 1
			score.WordsFound++

			if frequency[word] == 1 {
				result.Unique = true
				result.Points++
				score.UniqueWords++
			}

			score.Total += result.Points
			score.Categories = append(score.Categories, result)
		}

		if score.AllCategoriesFilled {
			score.Total += 3
		}
		if score.UniqueWords == score.WordsFound && score.WordsFound == len(categories) {
			score.Total += 5
		}

		results[playerID] = score
	}

	return results
}
