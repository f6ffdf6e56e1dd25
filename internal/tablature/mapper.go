package tablature

import (
	"context"
	"fmt"
	"math"
	"strings"

	"stemtab/internal/domain"
	"stemtab/internal/logger"
	"stemtab/internal/pitch"
)

const (
	// Notes below this confidence are treated as noise.
	confidenceCutoff = 0.5
	// Contour samples are aggregated into fixed time windows.
	windowSeconds = 0.5
	// Frets beyond this are not reachable on real instruments.
	maxFret = 24
	// Tab lines wrap after this many windows.
	windowsPerLine = 16
	// The piano table keeps every nth surviving sample.
	pianoSampleStride = 10

	noNotesMessage = "No notes detected in audio"
)

// band is the frequency range the extractor is asked to track for an
// instrument.
type band struct {
	min, max float64
}

var instrumentBands = map[domain.InstrumentType]band{
	domain.InstrumentGuitar: {82.0, 1200.0},
	domain.InstrumentBass:   {40.0, 400.0},
	domain.InstrumentPiano:  {27.5, 4200.0},
}

// Mapper turns a stem track's pitch contour into notation text.
type Mapper struct {
	Extractor pitch.Extractor
	Logger    *logger.Logger
}

func NewMapper(extractor pitch.Extractor, log *logger.Logger) *Mapper {
	if log == nil {
		log = logger.Default()
	}
	return &Mapper{
		Extractor: extractor,
		Logger:    log.WithComponent("tablature"),
	}
}

// Generate extracts the pitch contour of the audio at path and renders
// it for the given instrument. Extraction failures surface as errors;
// degenerate rendering input degrades to an explanatory message.
func (m *Mapper) Generate(ctx context.Context, path string, instrument domain.InstrumentType, tuningName string) (content string, err error) {
	b, found := instrumentBands[instrument]
	if !found {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownInstrument, instrument)
	}

	samples, err := m.Extractor.Extract(ctx, path, b.min, b.max)
	if err != nil {
		return "", fmt.Errorf("failed to extract pitch contour: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			m.Logger.Error("Render panic", "path", path, "panic", r)
			content = fmt.Sprintf("Error generating tablature: %v", r)
			err = nil
		}
	}()

	var notes []pitch.Sample
	for _, s := range samples {
		if s.Confidence > confidenceCutoff && s.Frequency > 0 {
			notes = append(notes, s)
		}
	}

	if len(notes) == 0 {
		return noNotesMessage, nil
	}

	switch instrument {
	case domain.InstrumentPiano:
		return renderPiano(notes), nil
	default:
		return renderFretted(notes, instrument, TuningFor(instrument, tuningName), tuningName), nil
	}
}

// bestPerWindow picks one note per time window: the highest-confidence
// sample, with earlier samples winning ties.
func bestPerWindow(notes []pitch.Sample) []*pitch.Sample {
	last := notes[len(notes)-1].Time
	windows := make([]*pitch.Sample, int(last/windowSeconds)+1)

	for i := range notes {
		s := &notes[i]
		w := int(s.Time / windowSeconds)
		if w < 0 || w >= len(windows) {
			continue
		}
		if windows[w] == nil || s.Confidence > windows[w].Confidence {
			windows[w] = s
		}
	}
	return windows
}

// fretFor finds the playing position for a target pitch: the smallest
// reachable fret, preferring the lower string on equal frets. A
// negative string index means the note is not playable in this tuning.
func fretFor(target int, tuning Tuning) (stringIdx, fret int) {
	stringIdx = -1
	fret = math.MaxInt
	for i, open := range tuning.OpenStrings {
		f := target - open
		if f < 0 || f > maxFret {
			continue
		}
		if f < fret {
			stringIdx = i
			fret = f
		}
	}
	return stringIdx, fret
}

func renderFretted(notes []pitch.Sample, instrument domain.InstrumentType, tuning Tuning, requestedTuning string) string {
	windows := bestPerWindow(notes)
	labels := tuning.Labels()
	numStrings := len(tuning.OpenStrings)

	// cells[s][w] is the 3-char cell for string s at window w.
	cells := make([][]string, numStrings)
	for s := range cells {
		cells[s] = make([]string, len(windows))
		for w := range cells[s] {
			cells[s][w] = "---"
		}
	}

	for w, sample := range windows {
		if sample == nil {
			continue
		}
		note, octave, ok := NoteForFrequency(sample.Frequency)
		if !ok {
			continue
		}
		target, err := AbsolutePitch(note, octave)
		if err != nil {
			continue
		}
		if s, fret := fretFor(target, tuning); s >= 0 {
			cells[s][w] = fmt.Sprintf("-%d-", fret)
		}
	}

	title := strings.ToUpper(string(instrument)[:1]) + string(instrument)[1:]

	// The header echoes the tuning name as requested, even when an
	// unrecognized name fell back to the standard string set.
	displayTuning := requestedTuning
	if displayTuning == "" {
		displayTuning = tuning.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s Tablature - %s Tuning\n", title, strings.ToUpper(displayTuning))
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")

	for start := 0; start < len(windows); start += windowsPerLine {
		end := start + windowsPerLine
		if end > len(windows) {
			end = len(windows)
		}
		// Highest-pitched string is printed first.
		for s := numStrings - 1; s >= 0; s-- {
			b.WriteString(labels[s])
			b.WriteString("|")
			for w := start; w < end; w++ {
				b.WriteString(cells[s][w])
			}
			b.WriteString("|\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func renderPiano(notes []pitch.Sample) string {
	var b strings.Builder
	b.WriteString("Piano Notation (Simplified)\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	b.WriteString("Time | Note | Octave\n")
	b.WriteString(strings.Repeat("-", 50))
	b.WriteString("\n")

	for i, s := range notes {
		if i%pianoSampleStride != 0 {
			continue
		}
		note, octave, ok := NoteForFrequency(s.Frequency)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%6.2fs | %-4s | %d\n", s.Time, note, octave)
	}

	return b.String()
}
