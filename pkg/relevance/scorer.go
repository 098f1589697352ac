// Package relevance scores approved tool candidates against a user question.
package relevance

import (
	"errors"
	"strings"

	"github.com/tb0hdan/kmu-curator/pkg/keywords"
	"github.com/tb0hdan/kmu-curator/pkg/models"
)

// NeutralKeywordScore is used when the question has no keywords at all.
const NeutralKeywordScore = 0.5

var ErrInvalidWeights = errors.New("scoring weights must be within [0, 1]")

// Weights are the tunable constants of the scoring formula:
//
//	min(keyword*Keyword + similarity*NameSimilarity + mention*NameBonus + Floor, 1)
type Weights struct {
	Keyword        float64 `json:"keyword"`
	NameSimilarity float64 `json:"name_similarity"`
	NameBonus      float64 `json:"name_bonus"`
	Floor          float64 `json:"floor"`
}

func DefaultWeights() Weights {
	return Weights{
		Keyword:        0.5,
		NameSimilarity: 0.2,
		NameBonus:      0.3,
		Floor:          0.3,
	}
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Keyword, w.NameSimilarity, w.NameBonus, w.Floor} {
		if v < 0 || v > 1 {
			return ErrInvalidWeights
		}
	}
	return nil
}

// Breakdown exposes the intermediate values of one score computation.
type Breakdown struct {
	KeywordScore   float64 `json:"keyword_score"`
	NameSimilarity float64 `json:"name_similarity"`
	NameMentioned  bool    `json:"name_mentioned"`
	Score          float64 `json:"score"`
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the relevance of tool to question in [Floor, 1].
func (s *Scorer) Score(question string, tool models.ToolCandidate) float64 {
	return s.Explain(question, tool).Score
}

func (s *Scorer) Explain(question string, tool models.ToolCandidate) Breakdown {
	questionKeywords := keywords.Extract(question)
	toolKeywords := keywords.Extract(tool.ToolName + " " + tool.Description)

	keywordScore := NeutralKeywordScore
	if len(questionKeywords) > 0 {
		keywordScore = float64(questionKeywords.Intersect(toolKeywords)) / float64(len(questionKeywords))
	}

	similarity := Similarity(question, tool.ToolName)
	mentioned := strings.Contains(strings.ToLower(question), strings.ToLower(tool.ToolName))

	raw := keywordScore*s.weights.Keyword + similarity*s.weights.NameSimilarity + s.weights.Floor
	if mentioned {
		raw += s.weights.NameBonus
	}

	return Breakdown{
		KeywordScore:   keywordScore,
		NameSimilarity: similarity,
		NameMentioned:  mentioned,
		Score:          min(raw, 1.0),
	}
}
