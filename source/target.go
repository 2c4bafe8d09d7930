package source

import (
	"fmt"
	"strings"
	"time"

	"github.com/segrab-cli/segrab/util"
)

var dateLayouts = []string{"2006-01-02", "2006_01_02", "20060102", "2006/01/02"}

// Date is a calendar day a broadcast was published on.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// ParseDate accepts YYYY-MM-DD, YYYY_MM_DD, YYYY/MM/DD and YYYYMMDD.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}

	return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// DateOf returns the calendar day of t.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Dirname is the date as YYYY_MM_DD.
func (d Date) Dirname() string {
	return fmt.Sprintf("%04d_%02d_%02d", d.Year, d.Month, d.Day)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Target is what the user asked for: either a dated broadcast or a free-form name.
type Target struct {
	Name string `json:"name,omitempty"`
	Date Date   `json:"date"`
}

// DatedTarget returns a target for a broadcast published on d.
func DatedTarget(d Date) Target {
	return Target{Date: d}
}

// NamedTarget returns a target identified only by name, used with fixed URLs.
func NamedTarget(name string) Target {
	return Target{Name: name}
}

// Dirname is the directory name the target's artifacts are stored under.
func (t Target) Dirname() string {
	if t.Name != "" {
		return util.SanitizeFilename(t.Name)
	}
	return t.Date.Dirname()
}

func (t Target) String() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Date.String()
}
