package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Defaults applied when a game concept leaves a field out.
const (
	DefaultTitle       = "AI Generated Game"
	DefaultGenre       = "Action"
	DefaultMechanics   = "movement, collision detection"
	DefaultVisualStyle = "Simple geometric shapes"
	DefaultControls    = "Arrow keys or WASD"
	DefaultObjectives  = "Complete the game objectives"
)

// ErrUnsupportedPromptShape is returned when enhanced_prompt is neither a
// JSON string nor a JSON object.
var ErrUnsupportedPromptShape = errors.New("enhanced_prompt must be a string or an object")

// EnhancedPrompt is the structured game concept produced by the enhance step.
type EnhancedPrompt struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Genre         string   `json:"genre"`
	GameMechanics []string `json:"game_mechanics"`
	VisualStyle   string   `json:"visual_style"`
	Controls      string   `json:"controls"`
	Objectives    string   `json:"objectives"`
}

// NewEnhancedPrompt wraps a refined description with the default concept fields.
func NewEnhancedPrompt(description string) EnhancedPrompt {
	return EnhancedPrompt{
		Title:         DefaultTitle,
		Description:   description,
		Genre:         DefaultGenre,
		GameMechanics: []string{"movement", "collision"},
		VisualStyle:   DefaultVisualStyle,
		Controls:      DefaultControls,
		Objectives:    DefaultObjectives,
	}
}

// PromptKind tags which variant an EnhancedPromptInput holds.
type PromptKind int

const (
	PromptKindNone PromptKind = iota
	PromptKindText
	PromptKindStructured
)

// EnhancedPromptInput is the enhanced_prompt request field. Clients send
// either the free-form text or the EnhancedPrompt object.
type EnhancedPromptInput struct {
	Kind       PromptKind
	Text       string
	Structured EnhancedPrompt
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *EnhancedPromptInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*in = EnhancedPromptInput{}
		return nil
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*in = EnhancedPromptInput{Kind: PromptKindText, Text: text}
	case '{':
		var structured EnhancedPrompt
		if err := json.Unmarshal(data, &structured); err != nil {
			return err
		}
		*in = EnhancedPromptInput{Kind: PromptKindStructured, Structured: structured}
	default:
		return ErrUnsupportedPromptShape
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (in EnhancedPromptInput) MarshalJSON() ([]byte, error) {
	switch in.Kind {
	case PromptKindText:
		return json.Marshal(in.Text)
	case PromptKindStructured:
		return json.Marshal(in.Structured)
	default:
		return []byte("null"), nil
	}
}

// IsBlank reports whether the input carries no usable concept.
func (in EnhancedPromptInput) IsBlank() bool {
	switch in.Kind {
	case PromptKindText:
		return strings.TrimSpace(in.Text) == ""
	case PromptKindStructured:
		return false
	default:
		return true
	}
}

// GameConcept is the canonical concept the code generator works from.
type GameConcept struct {
	Title       string
	Description string
	Genre       string
	Mechanics   string
	VisualStyle string
	Controls    string
	Objectives  string
}

// Normalize resolves either variant into a GameConcept with defaults filled in.
func (in EnhancedPromptInput) Normalize() GameConcept {
	if in.Kind != PromptKindStructured {
		return GameConcept{
			Title:       DefaultTitle,
			Description: in.Text,
			Genre:       DefaultGenre,
			Mechanics:   DefaultMechanics,
			VisualStyle: DefaultVisualStyle,
			Controls:    DefaultControls,
			Objectives:  DefaultObjectives,
		}
	}

	p := in.Structured
	mechanics := DefaultMechanics
	if len(p.GameMechanics) > 0 {
		mechanics = strings.Join(p.GameMechanics, ", ")
	}
	return GameConcept{
		Title:       orDefault(p.Title, DefaultTitle),
		Description: p.Description,
		Genre:       orDefault(p.Genre, DefaultGenre),
		Mechanics:   mechanics,
		VisualStyle: orDefault(p.VisualStyle, DefaultVisualStyle),
		Controls:    orDefault(p.Controls, DefaultControls),
		Objectives:  orDefault(p.Objectives, DefaultObjectives),
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
