// Package questionbank loads category question sets and resolves bilingual
// records to a single language at load time.
package questionbank

import "quiznix-service/internal/domain"

// Document is the on-disk (or in-database) shape of one category.
type Document struct {
	Questions []Record `json:"questions"`
}

// Variant holds one language's rendering of a question.
type Variant struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Record is a stored question: either monolingual (top-level fields set) or
// bilingual (both English and Hinglish variants present). The variant chosen
// is decided once, at load time, by Resolve.
type Record struct {
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	English  *Variant `json:"english,omitempty"`
	Hinglish *Variant `json:"hinglish,omitempty"`
}

// Bilingual reports whether the record carries per-language variants.
func (r Record) Bilingual() bool {
	return r.English != nil && r.Hinglish != nil
}

// Resolve selects the requested language's text, options, and answer.
// Monolingual records ignore the language. Unknown languages fall back to
// English.
func (r Record) Resolve(lang domain.Language) domain.Question {
	if !r.Bilingual() {
		return domain.Question{Text: r.Question, Options: r.Options, Answer: r.Answer}
	}
	v := r.English
	if lang == domain.LangHinglish {
		v = r.Hinglish
	}
	return domain.Question{Text: v.Question, Options: v.Options, Answer: v.Answer}
}

// ResolveAll maps Resolve over a document's records, preserving stored order.
func (d Document) ResolveAll(lang domain.Language) []domain.Question {
	questions := make([]domain.Question, 0, len(d.Questions))
	for _, r := range d.Questions {
		questions = append(questions, r.Resolve(lang))
	}
	return questions
}
