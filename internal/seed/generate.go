package seed

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"strconv"
)

// Demo fixtures matching the default service configuration.
var (
	houses     = []string{"Ujjain", "Nalanda", "Taxila", "Vikramshila"}
	categories = []string{"I", "II", "III", "IV", "V", "C"}
	items      = []string{
		"Chess", "Carnatic Vocal", "Light Music", "Group Dance",
		"Mono Act", "Elocution", "Quiz", "Painting", "Essay Writing",
		"Instrumental", "Folk Dance", "Debate",
	}
	venues = []string{"Main Auditorium", "Seminar Hall", "Open Stage", "Room 204"}
	awards = []float64{10, 8, 5, 3}
)

// recordPayload is the admin API request body for a score record. Points is
// typed any so a share of the generated records carries string-typed points,
// the way spreadsheet-sourced rows arrive in production.
type recordPayload struct {
	House    string `json:"house"`
	Item     string `json:"item"`
	Category string `json:"category"`
	Points   any    `json:"points"`
}

type slidePayload struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
	Time      string `json:"time,omitempty"`
	Venue     string `json:"venue,omitempty"`
	Winner    string `json:"winner,omitempty"`
	Second    string `json:"second,omitempty"`
	Third     string `json:"third,omitempty"`
}

func randIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateRecords builds n random score records. Roughly a third of the
// records carry their points as a JSON string rather than a number.
func generateRecords(n int) []recordPayload {
	records := make([]recordPayload, n)
	for i := range records {
		points := awards[randIndex(len(awards))]
		rec := recordPayload{
			House:    houses[randIndex(len(houses))],
			Item:     items[randIndex(len(items))],
			Category: categories[randIndex(len(categories))],
			Points:   points,
		}
		if randIndex(3) == 0 {
			rec.Points = strconv.FormatFloat(points, 'f', -1, 64)
		}
		records[i] = rec
	}
	return records
}

// generateSlides builds n event slides, a mix of completed and upcoming.
func generateSlides(n int) []slidePayload {
	slides := make([]slidePayload, n)
	for i := range slides {
		slide := slidePayload{
			Name:     items[i%len(items)],
			Category: categories[randIndex(len(categories))],
		}
		if randIndex(2) == 0 {
			slide.Completed = true
			slide.Winner = houses[randIndex(len(houses))]
			slide.Second = houses[randIndex(len(houses))]
			slide.Third = houses[randIndex(len(houses))]
		} else {
			slide.Time = strconv.Itoa(9+randIndex(8)) + ":00"
			slide.Venue = venues[randIndex(len(venues))]
		}
		slides[i] = slide
	}
	return slides
}

// expectedTotal sums the generated points regardless of wire type, mirroring
// the coercion the service applies.
func expectedTotal(records []recordPayload) float64 {
	var total float64
	for _, rec := range records {
		switch v := rec.Points.(type) {
		case float64:
			total += v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err == nil {
				total += f
			}
		}
	}
	return total
}

func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
