package tablature

import "stemtab/internal/domain"

// Tuning lists the open-string pitches of a fretted instrument, lowest
// string first. Pitches are absolute semitone numbers (A4 = 69) so the
// fret for a target note is a plain subtraction.
type Tuning struct {
	Name        string
	OpenStrings []int
}

// Labels returns the display names of the open strings, lowest first.
func (t Tuning) Labels() []string {
	labels := make([]string, len(t.OpenStrings))
	for i, p := range t.OpenStrings {
		labels[i] = pitchLabel(p)
	}
	return labels
}

var guitarTunings = map[string]Tuning{
	"standard":       {Name: "standard", OpenStrings: []int{40, 45, 50, 55, 59, 64}}, // E2 A2 D3 G3 B3 E4
	"drop_d":         {Name: "drop_d", OpenStrings: []int{38, 45, 50, 55, 59, 64}},   // D2 A2 D3 G3 B3 E4
	"half_step_down": {Name: "half_step_down", OpenStrings: []int{39, 44, 49, 54, 58, 63}},
}

var bassTunings = map[string]Tuning{
	"standard": {Name: "standard", OpenStrings: []int{28, 33, 38, 43}},     // E1 A1 D2 G2
	"5_string": {Name: "5_string", OpenStrings: []int{23, 28, 33, 38, 43}}, // B0 E1 A1 D2 G2
}

// TuningFor resolves a tuning by name for a fretted instrument,
// falling back to the instrument's standard tuning for names it does
// not recognize.
func TuningFor(instrument domain.InstrumentType, name string) Tuning {
	var table map[string]Tuning
	switch instrument {
	case domain.InstrumentBass:
		table = bassTunings
	default:
		table = guitarTunings
	}

	if t, found := table[name]; found {
		return t
	}
	return table["standard"]
}
