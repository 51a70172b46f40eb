package payroll

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// TIME INTERVAL CALCULATOR
// =============================================================================

// Interval is the worked-time breakdown of one punch record.
type Interval struct {
	Span      time.Duration // PunchOut - PunchIn
	BreakTime time.Duration // deducted break time
	Net       time.Duration // max(Span - BreakTime, 0)
	Breaks    int           // breaks actually deducted
}

// NetWorked derives the net worked duration of one punch record.
//
// Outcomes:
//   - valid record: Interval, nil
//   - invalid breaks: Interval with breaks ignored, *ValidationError{Recovered: true}
//   - open shift or inverted window: zero Interval, *ValidationError{Recovered: false}
//
// Open shifts are never estimated against the current time.
func NetWorked(p PunchRecord) (Interval, error) {
	if p.PunchOut == nil {
		return Interval{}, &ValidationError{
			StaffID: p.Staff.ID,
			PunchIn: p.PunchIn,
			Reason:  "still clocked in",
			Err:     ErrOpenShift,
		}
	}

	out := *p.PunchOut
	if !out.After(p.PunchIn) {
		return Interval{}, &ValidationError{
			StaffID: p.Staff.ID,
			PunchIn: p.PunchIn,
			Reason:  fmt.Sprintf("punch out %s", out.Format(time.RFC3339)),
			Err:     ErrInvalidPunchWindow,
		}
	}

	iv := Interval{Span: out.Sub(p.PunchIn)}

	if reason := checkBreaks(p.PunchIn, out, p.Breaks); reason != "" {
		iv.Net = iv.Span
		return iv, &ValidationError{
			StaffID:   p.Staff.ID,
			PunchIn:   p.PunchIn,
			Reason:    reason,
			Recovered: true,
			Err:       ErrInvalidBreaks,
		}
	}

	for _, b := range p.Breaks {
		iv.BreakTime += b.Duration()
	}
	iv.Breaks = len(p.Breaks)
	iv.Net = iv.Span - iv.BreakTime
	if iv.Net < 0 {
		iv.Net = 0
	}
	return iv, nil
}

// checkBreaks returns a non-empty reason when the breaks violate
// in <= start < end <= out or overlap each other. Touching breaks are fine.
func checkBreaks(in, out time.Time, breaks []BreakInterval) string {
	if len(breaks) == 0 {
		return ""
	}
	sorted := make([]BreakInterval, len(breaks))
	copy(sorted, breaks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	for i, b := range sorted {
		if !b.End.After(b.Start) {
			return fmt.Sprintf("break %d ends at or before its start", i)
		}
		if b.Start.Before(in) || b.End.After(out) {
			return fmt.Sprintf("break %s-%s outside punch window", b.Start.Format("15:04"), b.End.Format("15:04"))
		}
		if i > 0 && b.Start.Before(sorted[i-1].End) {
			return fmt.Sprintf("break at %s overlaps previous break", b.Start.Format("15:04"))
		}
	}
	return ""
}
