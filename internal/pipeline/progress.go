package pipeline

import "dialogue-ocr/internal/dialogue"

// Phase names the stage a Progress notification belongs to.
type Phase string

// Phases reported by Driver.Run, in order.
const (
	PhaseScan Phase = "scan"
	PhaseOCR  Phase = "ocr"
)

// Progress is an advisory notification. Current runs from 1 to Total within a
// phase. Dialogue is set for recognition progress only.
type Progress struct {
	Phase    Phase            `json:"phase"`
	Current  int              `json:"current"`
	Total    int              `json:"total"`
	Dialogue *dialogue.Result `json:"dialogue,omitempty"`
}

// ProgressFunc receives progress notifications. It is called from one goroutine
// at a time.
type ProgressFunc func(Progress)
