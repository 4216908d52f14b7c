package script

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DialogueTurn is one speaker's contiguous contribution. Turns are never
// mutated after acceptance; a rejected turn is replaced wholesale.
type DialogueTurn struct {
	// Speaker is a persona ID ("optimist", "skeptic", "narrator").
	Speaker string `json:"speaker"`

	// Position is the turn's ordinal index in the script.
	Position int `json:"position"`

	Text string `json:"text"`

	// Topic labels the discussion topic this turn belongs to. Empty for
	// narrator turns.
	Topic string `json:"topic,omitempty"`

	// Source is the claim or challenge text the turn elaborates.
	Source string `json:"source,omitempty"`

	// Fallback is true when the turn is the verbatim claim/challenge text,
	// used after the regeneration budget ran out.
	Fallback bool `json:"fallback,omitempty"`
}

// DialogueScript is the finished, validated script for one paper.
type DialogueScript struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	PaperTopic    string         `json:"paper_topic"`
	Turns         []DialogueTurn `json:"turns"`
	ExchangeCount int            `json:"exchange_count"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// FallbackCount reports how many turns fell back to verbatim content.
func (s *DialogueScript) FallbackCount() int {
	n := 0
	for _, t := range s.Turns {
		if t.Fallback {
			n++
		}
	}
	return n
}

// WordCount totals the words across all turns.
func (s *DialogueScript) WordCount() int {
	total := 0
	for _, t := range s.Turns {
		inWord := false
		for _, r := range t.Text {
			if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				inWord = false
			} else if !inWord {
				inWord = true
				total++
			}
		}
	}
	return total
}

// EstimateMinutes estimates spoken duration at ~150 words per minute.
func (s *DialogueScript) EstimateMinutes() int {
	minutes := s.WordCount() / 150
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

func SaveScript(s *DialogueScript, path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal script: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write script to %s: %w", path, err)
	}
	return nil
}

func LoadScript(path string) (*DialogueScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script from %s: %w", path, err)
	}
	var s DialogueScript
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script from %s: %w", path, err)
	}
	if len(s.Turns) == 0 {
		return nil, fmt.Errorf("script %s has no turns", path)
	}
	return &s, nil
}
