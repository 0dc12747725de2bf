package engine

import "fmt"

// Band is an inclusive difficulty range eligible for selection
type Band struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// FullBand is the widest defined band, used when a score band has no content
var FullBand = Band{Min: 1, Max: 6}

var bandThresholds = []struct {
	below int
	band  Band
}{
	{200, Band{1, 2}},
	{500, Band{2, 3}},
	{1000, Band{3, 4}},
	{2000, Band{4, 5}},
}

// BandFor maps a cumulative score to its difficulty band
func BandFor(score int) Band {
	for _, t := range bandThresholds {
		if score < t.below {
			return t.band
		}
	}
	return Band{5, 6}
}

// Contains reports whether difficulty d lies within the band
func (b Band) Contains(d int) bool {
	return d >= b.Min && d <= b.Max
}

func (b Band) String() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}
