package gemini

import (
	"fmt"
	"math"
	"strings"

	"github.com/phrazzld/hanzi-api/internal/domain"
	"github.com/phrazzld/hanzi-api/internal/generation"
	"google.golang.org/genai"
)

// Dialogue length bounds requested from the model.
const (
	minDialogueLines = 4
	maxDialogueLines = 6
)

// enrichPromptData is passed to the enrichment template.
type enrichPromptData struct {
	Character string
}

// dialoguePromptData is passed to the dialogue template.
type dialoguePromptData struct {
	Words    []string
	Scenario string
	MinLines int
	MaxLines int
}

// reflexPromptData is passed to the reflex template.
type reflexPromptData struct {
	Words    []string
	Scenario string
	Opening  bool
}

// enrichResponse is the JSON object returned for an enrichment request.
type enrichResponse struct {
	Pinyin             string `json:"pinyin"`
	Meaning            string `json:"meaning"`
	WordType           string `json:"word_type"`
	GrammarNote        string `json:"grammar_note"`
	RadicalAnalysis    string `json:"radical_analysis"`
	Example            string `json:"example"`
	ExamplePinyin      string `json:"example_pinyin"`
	ExampleTranslation string `json:"example_translation"`
}

func (r enrichResponse) toDomain() *domain.Enrichment {
	return &domain.Enrichment{
		Pinyin:             r.Pinyin,
		Meaning:            r.Meaning,
		WordType:           r.WordType,
		GrammarNote:        r.GrammarNote,
		RadicalAnalysis:    r.RadicalAnalysis,
		Example:            r.Example,
		ExamplePinyin:      r.ExamplePinyin,
		ExampleTranslation: r.ExampleTranslation,
	}
}

// dialogueResponse is the JSON object returned for a dialogue request.
type dialogueResponse struct {
	Lines []dialogueLine `json:"lines"`
}

type dialogueLine struct {
	Speaker     string `json:"speaker"`
	Chinese     string `json:"chinese"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
}

var enrichFields = []string{
	"pinyin", "meaning", "word_type", "grammar_note", "radical_analysis",
	"example", "example_pinyin", "example_translation",
}

var dialogueLineFields = []string{"speaker", "chinese", "pinyin", "translation"}

func stringProperties(names []string) map[string]*genai.Schema {
	props := make(map[string]*genai.Schema, len(names))
	for _, name := range names {
		props[name] = &genai.Schema{Type: genai.TypeString}
	}
	return props
}

// enrichSchema is the response schema for enrichment requests.
func enrichSchema() *genai.Schema {
	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       stringProperties(enrichFields),
		Required:         enrichFields,
		PropertyOrdering: enrichFields,
	}
}

// dialogueSchema is the response schema for dialogue requests.
func dialogueSchema() *genai.Schema {
	minItems := int64(minDialogueLines)
	maxItems := int64(maxDialogueLines)

	line := &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       stringProperties(dialogueLineFields),
		Required:         dialogueLineFields,
		PropertyOrdering: dialogueLineFields,
	}
	line.Properties["speaker"].Enum = []string{"A", "B"}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lines": {
				Type:     genai.TypeArray,
				Items:    line,
				MinItems: &minItems,
				MaxItems: &maxItems,
			},
		},
		Required: []string{"lines"},
	}
}

// reflexResponse is the JSON object returned for a reflex turn.
type reflexResponse struct {
	Evaluation  *reflexEvaluation `json:"evaluation"`
	NextMessage reflexMessage     `json:"next_message"`
}

type reflexEvaluation struct {
	Chinese               string  `json:"chinese"`
	Pinyin                string  `json:"pinyin"`
	Translation           string  `json:"translation"`
	Score                 float64 `json:"score"`
	Grammar               string  `json:"grammar"`
	Context               string  `json:"context"`
	VocabUsage            string  `json:"vocab_usage"`
	Suggestion            string  `json:"suggestion"`
	SuggestionPinyin      string  `json:"suggestion_pinyin"`
	SuggestionTranslation string  `json:"suggestion_translation"`
}

func (e reflexEvaluation) toDomain() (*domain.ReflexEvaluation, error) {
	score := int(math.Round(e.Score))
	if score < domain.MinReflexScore || score > domain.MaxReflexScore {
		return nil, fmt.Errorf("%w: score %v out of range", generation.ErrInvalidResponse, e.Score)
	}

	evaluation := &domain.ReflexEvaluation{
		Chinese:               strings.TrimSpace(e.Chinese),
		Pinyin:                strings.TrimSpace(e.Pinyin),
		Translation:           strings.TrimSpace(e.Translation),
		Score:                 score,
		Grammar:               strings.TrimSpace(e.Grammar),
		Context:               strings.TrimSpace(e.Context),
		VocabUsage:            strings.TrimSpace(e.VocabUsage),
		Suggestion:            strings.TrimSpace(e.Suggestion),
		SuggestionPinyin:      strings.TrimSpace(e.SuggestionPinyin),
		SuggestionTranslation: strings.TrimSpace(e.SuggestionTranslation),
	}
	if evaluation.Chinese == "" {
		return nil, fmt.Errorf("%w: evaluation has no Chinese text", generation.ErrInvalidResponse)
	}
	return evaluation, nil
}

type reflexMessage struct {
	Chinese     string `json:"chinese"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
}

func (m reflexMessage) toDomain() domain.ReflexMessage {
	return domain.ReflexMessage{
		Chinese:     strings.TrimSpace(m.Chinese),
		Pinyin:      strings.TrimSpace(m.Pinyin),
		Translation: strings.TrimSpace(m.Translation),
	}
}

var reflexEvaluationText = []string{
	"chinese", "pinyin", "translation", "grammar", "context", "vocab_usage",
	"suggestion", "suggestion_pinyin", "suggestion_translation",
}

var reflexMessageFields = []string{"chinese", "pinyin", "translation"}

// reflexSchema is the response schema for reflex turns. The evaluation is
// optional so the model can leave it out of an opening line.
func reflexSchema() *genai.Schema {
	minScore := float64(domain.MinReflexScore)
	maxScore := float64(domain.MaxReflexScore)

	evaluation := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: stringProperties(reflexEvaluationText),
		Required:   append([]string{"score"}, reflexEvaluationText...),
	}
	evaluation.Properties["score"] = &genai.Schema{
		Type:    genai.TypeInteger,
		Minimum: &minScore,
		Maximum: &maxScore,
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"evaluation": evaluation,
			"next_message": {
				Type:       genai.TypeObject,
				Properties: stringProperties(reflexMessageFields),
				Required:   reflexMessageFields,
			},
		},
		Required: []string{"next_message"},
	}
}
