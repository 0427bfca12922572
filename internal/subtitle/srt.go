package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTimestamp renders a seconds value as an SRT timestamp, HH:MM:SS,mmm.
// Hours, minutes, and seconds are floored; milliseconds are rounded half away
// from zero, and a rounded value of 1000 carries into the seconds field.
// Hours beyond two digits render at natural width rather than truncating.
func FormatTimestamp(seconds float64) string {
	total, millis := splitMillis(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// splitMillis breaks a seconds value into whole seconds and milliseconds,
// rounding half away from zero at the millisecond. The rounding works on the
// value's shortest decimal form: multiplying the binary float by 1000 lands
// boundary values like 999.5 ms just below the half, so math.Round on the
// product drops the carry the caller wrote.
func splitMillis(seconds float64) (int64, int64) {
	text := strconv.FormatFloat(seconds, 'f', -1, 64)
	wholeText, fracText, _ := strings.Cut(text, ".")
	whole, err := strconv.ParseInt(wholeText, 10, 64)
	if err != nil || whole < 0 {
		return 0, 0
	}
	for len(fracText) < 4 {
		fracText += "0"
	}
	millis, err := strconv.ParseInt(fracText[:3], 10, 64)
	if err != nil {
		return whole, 0
	}
	// The fourth decimal digit alone decides the half: anything below '5'
	// leaves the remainder under 0.5 ms no matter what follows.
	if fracText[3] >= '5' {
		millis++
	}
	if millis >= 1000 {
		whole++
		millis -= 1000
	}
	return whole, millis
}

// Build renders an ordered sequence of translated segments as a complete SRT
// document. Cues are numbered 1..N by position regardless of any upstream
// numbering, and are emitted in input order. Malformed timing (negative, NaN)
// fails the whole build before any output is produced. Zero segments yield an
// empty document.
func Build(segments []TranslatedSegment) (string, error) {
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return "", fmt.Errorf("cue %d: %w", i+1, err)
		}
	}

	var doc strings.Builder
	for i, seg := range segments {
		doc.WriteString(strconv.Itoa(i + 1))
		doc.WriteByte('\n')
		doc.WriteString(FormatTimestamp(seg.Start))
		doc.WriteString(" --> ")
		doc.WriteString(FormatTimestamp(seg.End))
		doc.WriteByte('\n')
		doc.WriteString(seg.Text)
		doc.WriteString("\n\n")
	}
	return doc.String(), nil
}

// CountCues returns the number of cue blocks in an SRT document.
func CountCues(document string) int {
	content := strings.TrimSpace(document)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// ParseTimestamp converts an SRT timestamp back to seconds. Both comma and
// period millisecond separators are accepted.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// DocumentBounds returns the earliest start and latest end found in an SRT
// document. Used to sanity-check generated subtitles against the video
// duration before compositing.
func DocumentBounds(document string) (first, last float64, found bool) {
	first = math.Inf(1)
	for _, line := range strings.Split(document, "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		parts := strings.Split(line, "-->")
		if len(parts) != 2 {
			continue
		}
		if start, err := ParseTimestamp(parts[0]); err == nil {
			if start < first {
				first = start
			}
			found = true
		}
		if end, err := ParseTimestamp(parts[1]); err == nil {
			if end > last {
				last = end
			}
		}
	}
	if !found {
		return 0, last, false
	}
	return first, last, true
}
