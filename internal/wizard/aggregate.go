package wizard

import (
	"math"
)

// Volume returns length*width*depth rounded to 2 decimals, or nil when raw
// is not a valid dimensions string.
func Volume(raw string) *float64 {
	d, err := ParseDimensions(raw)
	if err != nil {
		return nil
	}
	v := d.Volume()
	return &v
}

func (d Dimensions) Volume() float64 {
	return round2(d.Length * d.Width * d.Depth)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SummaryLine is one answered step with option keys replaced by labels.
type SummaryLine struct {
	Key    string   `json:"key"`
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// Humanize lists answered steps in catalog order. Select answers are
// replaced by option labels; multi-select keeps the user's selection order.
func Humanize(catalog *Catalog, answers *Answers) []SummaryLine {
	lines := make([]SummaryLine, 0, answers.Len())
	for i := 0; i < catalog.Count(); i++ {
		step, _ := catalog.StepAt(i)
		a, ok := answers.Get(step.Key)
		if !ok {
			continue
		}

		line := SummaryLine{Key: step.Key, Title: step.Title}
		if line.Title == "" {
			line.Title = step.Key
		}

		switch v := a.(type) {
		case TextAnswer:
			if v == "" {
				continue
			}
			line.Values = []string{string(v)}
		case ChoiceAnswer:
			line.Values = []string{step.label(string(v))}
		case MultiAnswer:
			if len(v) == 0 {
				continue
			}
			for _, k := range v {
				line.Values = append(line.Values, step.label(k))
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// Estimate is the final artifact of the cost estimate wizard.
type Estimate struct {
	Lines  []SummaryLine `json:"lines"`
	Volume *float64      `json:"volume,omitempty"`
}

// BuildEstimate humanizes answers and derives the pool volume from the
// dimensions step. Missing or unparsable dimensions give a nil volume.
func BuildEstimate(catalog *Catalog, answers *Answers) Estimate {
	est := Estimate{Lines: Humanize(catalog, answers)}
	if raw, ok := answers.Text(StepDimensions); ok {
		est.Volume = Volume(raw)
	}
	return est
}
