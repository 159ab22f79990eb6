package domain

// Enrichment is the study material an external language model produces for a
// single word.
type Enrichment struct {
	Pinyin             string `json:"pinyin"`
	Meaning            string `json:"meaning"`
	WordType           string `json:"word_type"`
	GrammarNote        string `json:"grammar_note"`
	RadicalAnalysis    string `json:"radical_analysis"`
	Example            string `json:"example"`
	ExamplePinyin      string `json:"example_pinyin"`
	ExampleTranslation string `json:"example_translation"`
}

// FillCard copies enrichment values into the card fields that are still empty.
// Values the user already entered are kept.
func (e Enrichment) FillCard(card *Card) {
	fillEmpty(&card.Pinyin, e.Pinyin)
	fillEmpty(&card.Meaning, e.Meaning)
	fillEmpty(&card.WordType, e.WordType)
	fillEmpty(&card.GrammarNote, e.GrammarNote)
	fillEmpty(&card.RadicalAnalysis, e.RadicalAnalysis)
	fillEmpty(&card.Example, e.Example)
	fillEmpty(&card.ExamplePinyin, e.ExamplePinyin)
	fillEmpty(&card.ExampleTranslation, e.ExampleTranslation)
}

func fillEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// DialogueLine is one turn of a generated practice conversation between
// speakers A and B.
type DialogueLine struct {
	Speaker     string `json:"speaker"`
	Chinese     string `json:"chinese"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
}
