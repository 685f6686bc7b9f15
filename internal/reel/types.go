package reel

import (
	"fmt"
	"strings"
)

// Request modes.
const (
	ModeFaithAdvice  = "faith_advice"
	ModeHistoryFacts = "history_facts"
	ModeMixed        = "mixed"
)

var (
	validModes     = map[string]bool{ModeFaithAdvice: true, ModeHistoryFacts: true, ModeMixed: true}
	validLengths   = map[int]bool{30: true, 45: true, 60: true}
	validGoals     = map[string]bool{"saves": true, "shares": true, "comments": true, "follows": true}
	validLanguages = map[string]bool{"english": true, "arabic": true, "bilingual": true}
	validTones     = map[string]bool{"calm": true, "emotional": true, "intense": true}
)

// Request holds the creative parameters for one generation. It lives for
// exactly one pipeline run and is never persisted as-is.
type Request struct {
	Mode          string
	Topic         string
	LengthSeconds int
	Goal          string
	Language      string
	Tone          string
	ReferenceText string
	SourceNotes   string
}

// Normalize trims free-form fields and lower-cases the enum fields so a
// single canonical spelling flows through the rest of the pipeline.
func (r *Request) Normalize() {
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
	r.Topic = strings.TrimSpace(r.Topic)
	r.Goal = strings.ToLower(strings.TrimSpace(r.Goal))
	r.Language = strings.ToLower(strings.TrimSpace(r.Language))
	r.Tone = strings.ToLower(strings.TrimSpace(r.Tone))
	r.ReferenceText = strings.TrimSpace(r.ReferenceText)
	r.SourceNotes = strings.TrimSpace(r.SourceNotes)
}

// Validate rejects the whole request on the first out-of-range field.
func (r Request) Validate() error {
	if r.Topic == "" {
		return fmt.Errorf("missing topic")
	}
	if !validModes[r.Mode] {
		return fmt.Errorf("invalid mode %q", r.Mode)
	}
	if !validLengths[r.LengthSeconds] {
		return fmt.Errorf("invalid lengthSeconds %d", r.LengthSeconds)
	}
	if !validGoals[r.Goal] {
		return fmt.Errorf("invalid goal %q", r.Goal)
	}
	if !validLanguages[r.Language] {
		return fmt.Errorf("invalid language %q", r.Language)
	}
	if !validTones[r.Tone] {
		return fmt.Errorf("invalid tone %q", r.Tone)
	}
	return nil
}

// Beat is one filmable segment of the script.
type Beat struct {
	Timestamp    string `json:"t"`
	Visual       string `json:"visual"`
	Voiceover    string `json:"voiceover"`
	OnScreenText string `json:"on_screen_text"`
}

// Package is the contract-conformant output of one generation. Nothing
// upstream of ParsePackage ever produces one of these.
type Package struct {
	Topic         string   `json:"topic"`
	Mode          string   `json:"mode"`
	Language      string   `json:"language"`
	Tone          string   `json:"tone"`
	LengthSeconds int      `json:"length_seconds"`
	Goal          string   `json:"goal"`
	Hooks         []string `json:"hooks"`
	ScriptBeats   []Beat   `json:"script_beats"`
	Caption       string   `json:"caption"`
	Hashtags      []string `json:"hashtags"`
	CTA           string   `json:"cta"`
}
