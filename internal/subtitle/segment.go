package subtitle

import (
	"encoding/json"
	"fmt"
	"math"
)

// Segment is one time-stamped unit of source-language transcript text.
// Start and End are seconds from the beginning of the video.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranslatedSegment pairs the original timing with target-language text.
// Timing is copied verbatim from the source segment; translation never
// alters it.
type TranslatedSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Validate reports timing problems that would corrupt a subtitle document.
func (s Segment) Validate() error {
	return validateTiming(s.Start, s.End)
}

// Validate reports timing problems that would corrupt a subtitle document.
func (t TranslatedSegment) Validate() error {
	return validateTiming(t.Start, t.End)
}

func validateTiming(start, end float64) error {
	if math.IsNaN(start) || math.IsNaN(end) {
		return fmt.Errorf("segment timing is NaN (start=%v end=%v)", start, end)
	}
	if math.IsInf(start, 0) || math.IsInf(end, 0) {
		return fmt.Errorf("segment timing is infinite (start=%v end=%v)", start, end)
	}
	if start < 0 || end < 0 {
		return fmt.Errorf("segment timing is negative (start=%v end=%v)", start, end)
	}
	if start > end {
		return fmt.Errorf("segment start %v after end %v", start, end)
	}
	return nil
}

// EncodeSegments serializes segments for queue persistence.
func EncodeSegments(segments []Segment) (string, error) {
	data, err := json.Marshal(segments)
	if err != nil {
		return "", fmt.Errorf("encode segments: %w", err)
	}
	return string(data), nil
}

// DecodeSegments restores segments persisted by EncodeSegments.
func DecodeSegments(payload string) ([]Segment, error) {
	if payload == "" {
		return nil, nil
	}
	var segments []Segment
	if err := json.Unmarshal([]byte(payload), &segments); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}
	return segments, nil
}
