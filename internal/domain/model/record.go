// Package model contains domain models passed between layers.
package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ScoreRecord is one scoring entry tying a house, category, event name and
// point value. Multiple records may share the same (house, category, item)
// triple; they are separate contributions and are accumulated, never
// overwritten.
type ScoreRecord struct {
	ID       string `json:"id"`
	House    string `json:"house"`
	Item     string `json:"item"`
	Category string `json:"category"`
	Points   Points `json:"points"`
}

// Slide is one event's display card in the carousel, either upcoming
// (time/venue) or completed (winners).
type Slide struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
	Time      string `json:"time,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Winner    string `json:"winner,omitempty"`
	Second    string `json:"second,omitempty"`
	Third     string `json:"third,omitempty"`
}

// Points is a point value that may arrive as a JSON number or a string.
// Unmarshaling never fails on a malformed value; it is kept as invalid so the
// aggregation layer can apply its coerce-to-zero policy instead of aborting
// the snapshot.
type Points struct {
	value float64
	valid bool
	raw   string
}

// PointsOf builds a valid Points from a number.
func PointsOf(v float64) Points {
	return Points{value: v, valid: true}
}

// Float returns the numeric value and whether it parsed as a number.
func (p Points) Float() (float64, bool) {
	return p.value, p.valid
}

// Raw returns the original textual form of a malformed value, for logging.
func (p Points) Raw() string {
	if p.valid {
		return strconv.FormatFloat(p.value, 'f', -1, 64)
	}
	return p.raw
}

// UnmarshalJSON accepts a number, a numeric string, or arbitrary garbage;
// garbage yields an invalid Points rather than an error.
func (p *Points) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = Points{raw: ""}
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		// NaN propagates through addition and would silently poison house
		// totals, so it is rejected along with unparsable text.
		*p = Points{raw: s}
		return nil
	}
	*p = Points{value: v, valid: true}
	return nil
}

// MarshalJSON emits a number for valid values and the raw string otherwise.
func (p Points) MarshalJSON() ([]byte, error) {
	if p.valid {
		return json.Marshal(p.value)
	}
	return json.Marshal(p.raw)
}
