package payroll

import (
	"time"
)

// =============================================================================
// ZONE - The single timezone normalizer
// =============================================================================

const DayLayout = "2006-01-02"

// Zone normalizes instants into one outlet location. Every timestamp that
// reaches the interval calculator or a day key goes through a Zone, so a shift
// crossing midnight is always attributed the same way.
type Zone struct {
	loc *time.Location
}

// NewZone returns a Zone for loc; nil means UTC.
func NewZone(loc *time.Location) Zone {
	if loc == nil {
		loc = time.UTC
	}
	return Zone{loc: loc}
}

// LoadZone resolves an IANA name such as "Asia/Jakarta". Empty means UTC.
func LoadZone(name string) (Zone, error) {
	if name == "" {
		return NewZone(time.UTC), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, err
	}
	return NewZone(loc), nil
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// Normalize converts t into the zone. The instant is unchanged.
func (z Zone) Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(z.Location())
}

// DayKey returns the local calendar day of t as YYYY-MM-DD.
func (z Zone) DayKey(t time.Time) string {
	return z.Normalize(t).Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD day key as local midnight.
func (z Zone) ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, z.Location())
}

// Days returns every day key in [from, to]. An inverted range yields nil.
func (z Zone) Days(from, to string) ([]string, error) {
	start, err := z.ParseDay(from)
	if err != nil {
		return nil, err
	}
	end, err := z.ParseDay(to)
	if err != nil {
		return nil, err
	}
	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DayLayout))
	}
	return days, nil
}

// normalizePunch returns a copy of the punch record with every instant in the zone.
func (z Zone) normalizePunch(p PunchRecord) PunchRecord {
	out := PunchRecord{
		Staff:   p.Staff,
		PunchIn: z.Normalize(p.PunchIn),
	}
	if p.PunchOut != nil {
		po := z.Normalize(*p.PunchOut)
		out.PunchOut = &po
	}
	if len(p.Breaks) > 0 {
		out.Breaks = make([]BreakInterval, len(p.Breaks))
		for i, b := range p.Breaks {
			out.Breaks[i] = BreakInterval{Start: z.Normalize(b.Start), End: z.Normalize(b.End)}
		}
	}
	return out
}

// ShiftDay is the day key an operating day belongs to: the local day of its
// open time, or of its earliest punch-in when the open time is missing.
func (z Zone) ShiftDay(s ShiftContext) string {
	if !s.OpenTime.IsZero() {
		return z.DayKey(s.OpenTime)
	}
	var first time.Time
	for _, p := range s.Punches {
		if first.IsZero() || p.PunchIn.Before(first) {
			first = p.PunchIn
		}
	}
	if first.IsZero() {
		return ""
	}
	return z.DayKey(first)
}
