// Package dialogue collects recognized dialogue lines in appearance order.
package dialogue

import "strings"

// Result is one recognized dialogue line.
type Result struct {
	Index   int    `json:"index"`
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	CropID  string `json:"crop_filename"`
}

// Accumulator merges results in event order. A result whose text extends the
// previous one (a line still being typed out) replaces it.
type Accumulator struct {
	results []Result
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Accept adds r and returns the stored result with its final index.
func (a *Accumulator) Accept(r Result) Result {
	n := len(a.results)
	if n > 0 && strings.HasPrefix(r.Text, a.results[n-1].Text) {
		r.Index = n - 1
		a.results[n-1] = r
		return r
	}

	r.Index = n
	a.results = append(a.results, r)
	return r
}

// Results returns a copy of the accumulated results.
func (a *Accumulator) Results() []Result {
	out := make([]Result, len(a.results))
	copy(out, a.results)
	return out
}

// Len returns the number of results.
func (a *Accumulator) Len() int {
	return len(a.results)
}
