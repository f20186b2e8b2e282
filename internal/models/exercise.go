package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ExerciseType string

const (
	ExerciseFillBlank      ExerciseType = "fill-blank"
	ExerciseMultipleChoice ExerciseType = "multiple-choice"
	ExerciseMatching       ExerciseType = "matching"
	ExerciseTranslation    ExerciseType = "translation"
)

// ExerciseTypes lists every supported exercise type in display order.
var ExerciseTypes = []ExerciseType{
	ExerciseFillBlank,
	ExerciseMultipleChoice,
	ExerciseMatching,
	ExerciseTranslation,
}

var ErrUnknownExerciseType = errors.New("unknown exercise type")

func (t ExerciseType) IsValid() bool {
	switch t {
	case ExerciseFillBlank, ExerciseMultipleChoice, ExerciseMatching, ExerciseTranslation:
		return true
	}
	return false
}

// Payload is the type-specific body of an exercise. It is implemented only by
// the four payload types of this package, so a type switch over them is
// exhaustive.
type Payload interface {
	Type() ExerciseType
	isPayload()
}

// Exercise is a read-only drill definition. Its type is carried by the payload.
type Exercise struct {
	Title   string
	Payload Payload
}

func (e *Exercise) Type() ExerciseType {
	if e == nil || e.Payload == nil {
		return ""
	}
	return e.Payload.Type()
}

// ===== PAYLOADS =====

type FillBlankPayload struct {
	Questions []FillBlankQuestion `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

type FillBlankQuestion struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Sentence []SentencePart `json:"sentence" yaml:"sentence" validate:"required,min=1"`
}

// SentencePart is either literal text or a blank descriptor.
type SentencePart struct {
	Text  string `json:"text,omitempty" yaml:"text,omitempty"`
	Blank *Blank `json:"blank,omitempty" yaml:"blank,omitempty"`
}

type Blank struct {
	Answer string `json:"answer" yaml:"answer"`
}

type MultipleChoicePayload struct {
	Questions []MultipleChoiceQuestion `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

type MultipleChoiceQuestion struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Prompt       string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Options      []string `json:"options" yaml:"options" validate:"required,min=2"`
	CorrectIndex *int     `json:"correct_index,omitempty" yaml:"correct_index,omitempty"`
	CorrectValue string   `json:"correct_value,omitempty" yaml:"correct_value,omitempty"`
}

type MatchingPayload struct {
	LeftItems      []string    `json:"left_items" yaml:"left_items" validate:"required,min=1"`
	RightItems     []string    `json:"right_items" yaml:"right_items" validate:"required,min=1"`
	CorrectMatches []MatchPair `json:"correct_matches" yaml:"correct_matches" validate:"required,min=1"`
}

type MatchPair struct {
	Left  int `json:"left" yaml:"left"`
	Right int `json:"right" yaml:"right"`
}

type TranslationPayload struct {
	Questions []TranslationQuestion `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

type TranslationQuestion struct {
	ID                string   `json:"id" yaml:"id" validate:"required"`
	Prompt            string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	AcceptableAnswers []string `json:"acceptable_answers" yaml:"acceptable_answers" validate:"required,min=1"`
}

func (*FillBlankPayload) Type() ExerciseType      { return ExerciseFillBlank }
func (*MultipleChoicePayload) Type() ExerciseType { return ExerciseMultipleChoice }
func (*MatchingPayload) Type() ExerciseType       { return ExerciseMatching }
func (*TranslationPayload) Type() ExerciseType    { return ExerciseTranslation }

func (*FillBlankPayload) isPayload()      {}
func (*MultipleChoicePayload) isPayload() {}
func (*MatchingPayload) isPayload()       {}
func (*TranslationPayload) isPayload()    {}

// ===== QUESTION HELPERS =====

// FindBlank returns the first blank descriptor of the sentence.
func (q *FillBlankQuestion) FindBlank() (*Blank, bool) {
	for _, part := range q.Sentence {
		if part.Blank != nil {
			return part.Blank, true
		}
	}
	return nil, false
}

// CorrectOption resolves the designated correct option to its index. The
// index designation wins over the value designation when both are set.
func (q *MultipleChoiceQuestion) CorrectOption() (int, bool) {
	if q.CorrectIndex != nil {
		idx := *q.CorrectIndex
		if idx >= 0 && idx < len(q.Options) {
			return idx, true
		}
		return -1, false
	}
	if q.CorrectValue != "" {
		return q.OptionIndex(q.CorrectValue)
	}
	return -1, false
}

// OptionIndex converts a submitted option into its canonical index form. The
// submission may be a decimal index or the option text itself.
func (q *MultipleChoiceQuestion) OptionIndex(submitted string) (int, bool) {
	submitted = strings.TrimSpace(submitted)
	if idx, err := strconv.Atoi(submitted); err == nil {
		if idx >= 0 && idx < len(q.Options) {
			return idx, true
		}
		return -1, false
	}
	for i, option := range q.Options {
		if option == submitted {
			return i, true
		}
	}
	return -1, false
}

// CorrectRightFor returns the declared right partner of a left item.
func (p *MatchingPayload) CorrectRightFor(left int) (int, bool) {
	for _, pair := range p.CorrectMatches {
		if pair.Left == left {
			return pair.Right, true
		}
	}
	return -1, false
}

const matchKeyPrefix = "match-"

// MatchKey is the answer identifier under which the pairing of a left item is recorded.
func MatchKey(left int) string {
	return matchKeyPrefix + strconv.Itoa(left)
}

func ParseMatchKey(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, matchKeyPrefix)
	if !ok {
		return -1, false
	}
	left, err := strconv.Atoi(rest)
	if err != nil || left < 0 {
		return -1, false
	}
	return left, true
}

// ===== SCORABLE UNITS =====

// UnitIDs returns the identifiers of every scorable unit in exercise order.
// For matching exercises these are the match keys of the declared pairs.
func (e *Exercise) UnitIDs() []string {
	switch p := e.Payload.(type) {
	case *FillBlankPayload:
		ids := make([]string, len(p.Questions))
		for i, q := range p.Questions {
			ids[i] = q.ID
		}
		return ids
	case *MultipleChoicePayload:
		ids := make([]string, len(p.Questions))
		for i, q := range p.Questions {
			ids[i] = q.ID
		}
		return ids
	case *MatchingPayload:
		ids := make([]string, len(p.CorrectMatches))
		for i, pair := range p.CorrectMatches {
			ids[i] = MatchKey(pair.Left)
		}
		return ids
	case *TranslationPayload:
		ids := make([]string, len(p.Questions))
		for i, q := range p.Questions {
			ids[i] = q.ID
		}
		return ids
	}
	return nil
}

// TotalQuestions is the number of scorable units. Matching exercises count
// declared pairs, not left items.
func (e *Exercise) TotalQuestions() int {
	if p, ok := e.Payload.(*MatchingPayload); ok {
		return len(p.CorrectMatches)
	}
	return len(e.UnitIDs())
}

// ===== CODECS =====

type exerciseHeader struct {
	Type  ExerciseType `json:"type" yaml:"type"`
	Title string       `json:"title" yaml:"title"`
}

func newPayload(t ExerciseType) (Payload, error) {
	switch t {
	case ExerciseFillBlank:
		return &FillBlankPayload{}, nil
	case ExerciseMultipleChoice:
		return &MultipleChoicePayload{}, nil
	case ExerciseMatching:
		return &MatchingPayload{}, nil
	case ExerciseTranslation:
		return &TranslationPayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExerciseType, t)
	}
}

func (e *Exercise) UnmarshalJSON(data []byte) error {
	var header exerciseHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("decode exercise header: %w", err)
	}
	payload, err := newPayload(header.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", header.Type, err)
	}
	e.Title = header.Title
	e.Payload = payload
	return nil
}

func (e Exercise) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if e.Payload != nil {
		body, err := json.Marshal(e.Payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
	}
	typ, _ := json.Marshal(e.Type())
	title, _ := json.Marshal(e.Title)
	fields["type"] = typ
	fields["title"] = title
	return json.Marshal(fields)
}

func (e *Exercise) UnmarshalYAML(value *yaml.Node) error {
	var header exerciseHeader
	if err := value.Decode(&header); err != nil {
		return fmt.Errorf("decode exercise header: %w", err)
	}
	payload, err := newPayload(header.Type)
	if err != nil {
		return err
	}
	if err := value.Decode(payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", header.Type, err)
	}
	e.Title = header.Title
	e.Payload = payload
	return nil
}

// UnmarshalJSON accepts either a bare string (literal text) or an object.
func (p *SentencePart) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*p = SentencePart{Text: text}
		return nil
	}
	type plain SentencePart
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = SentencePart(obj)
	return nil
}

func (p *SentencePart) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = SentencePart{Text: value.Value}
		return nil
	}
	type plain SentencePart
	var obj plain
	if err := value.Decode(&obj); err != nil {
		return err
	}
	*p = SentencePart(obj)
	return nil
}
