package tablature

import (
	"context"
	"errors"
	"strings"
	"testing"

	"stemtab/internal/domain"
	"stemtab/internal/pitch"
)

type fakeExtractor struct {
	samples []pitch.Sample
	err     error

	gotMin, gotMax float64
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, minFreq, maxFreq float64) ([]pitch.Sample, error) {
	f.gotMin, f.gotMax = minFreq, maxFreq
	return f.samples, f.err
}

func TestGenerateNoNotes(t *testing.T) {
	// Low-confidence samples are noise and must not count as notes.
	ext := &fakeExtractor{samples: []pitch.Sample{
		{Time: 0, Frequency: 440, Confidence: 0.3},
		{Time: 0.5, Frequency: 220, Confidence: 0.5},
	}}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentGuitar, "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if content != "No notes detected in audio" {
		t.Errorf("Expected no-notes message, got %q", content)
	}
}

func TestGenerateExtractorError(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("analyzer crashed")}
	m := NewMapper(ext, nil)

	_, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentGuitar, "standard")
	if err == nil {
		t.Fatal("Expected error from extractor")
	}
	if !strings.Contains(err.Error(), "analyzer crashed") {
		t.Errorf("Expected wrapped extractor error, got %v", err)
	}
}

func TestGenerateInstrumentBands(t *testing.T) {
	cases := []struct {
		instrument domain.InstrumentType
		min, max   float64
	}{
		{domain.InstrumentGuitar, 82.0, 1200.0},
		{domain.InstrumentBass, 40.0, 400.0},
		{domain.InstrumentPiano, 27.5, 4200.0},
	}

	for _, c := range cases {
		ext := &fakeExtractor{}
		m := NewMapper(ext, nil)
		if _, err := m.Generate(context.Background(), "stem.wav", c.instrument, "standard"); err != nil {
			t.Fatalf("Generate(%s) failed: %v", c.instrument, err)
		}
		if ext.gotMin != c.min || ext.gotMax != c.max {
			t.Errorf("%s band = [%f, %f], want [%f, %f]", c.instrument, ext.gotMin, ext.gotMax, c.min, c.max)
		}
	}
}

func TestGenerateGuitarTab(t *testing.T) {
	// Open low E (82.41 Hz) then A4 (440 Hz, fret 5 on the high E string).
	ext := &fakeExtractor{samples: []pitch.Sample{
		{Time: 0.1, Frequency: 82.41, Confidence: 0.9},
		{Time: 0.6, Frequency: 440.0, Confidence: 0.9},
	}}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentGuitar, "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(content, "Guitar Tablature - STANDARD Tuning\n") {
		t.Errorf("Unexpected header: %q", strings.SplitN(content, "\n", 2)[0])
	}

	lines := strings.Split(content, "\n")
	var e2Line, e4Line string
	for _, line := range lines {
		if strings.HasPrefix(line, "E2|") {
			e2Line = line
		}
		if strings.HasPrefix(line, "E4|") {
			e4Line = line
		}
	}
	if e2Line != "E2|-0----|" {
		t.Errorf("Low string line = %q, want %q", e2Line, "E2|-0----|")
	}
	if e4Line != "E4|----5-|" {
		t.Errorf("High string line = %q, want %q", e4Line, "E4|----5-|")
	}

	// Highest-pitched string renders first.
	var order []string
	for _, line := range lines {
		if i := strings.IndexByte(line, '|'); i > 0 {
			order = append(order, line[:i])
		}
	}
	if len(order) < 6 || order[0] != "E4" || order[5] != "E2" {
		t.Errorf("Unexpected string order: %v", order)
	}
}

func TestGenerateUnknownTuningEchoesName(t *testing.T) {
	// An unrecognized tuning name falls back to the standard string set
	// but the header still echoes what was asked for.
	ext := &fakeExtractor{samples: []pitch.Sample{
		{Time: 0.1, Frequency: 82.41, Confidence: 0.9},
	}}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentGuitar, "open_g")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(content, "Guitar Tablature - OPEN_G Tuning\n") {
		t.Errorf("Unexpected header: %q", strings.SplitN(content, "\n", 2)[0])
	}
	// Standard-tuning strings and frets.
	if !strings.Contains(content, "E2|-0-|") {
		t.Errorf("Expected standard-tuning fallback frets, got:\n%s", content)
	}
}

func TestGenerateWindowPicksHighestConfidence(t *testing.T) {
	// Two samples in the same window; the more confident one wins.
	ext := &fakeExtractor{samples: []pitch.Sample{
		{Time: 0.1, Frequency: 82.41, Confidence: 0.6},
		{Time: 0.2, Frequency: 110.0, Confidence: 0.95}, // A2, open fifth string
	}}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentGuitar, "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(content, "A2|-0-|") {
		t.Errorf("Expected A2 open string to win the window, got:\n%s", content)
	}
	if strings.Contains(content, "E2|-0-|") {
		t.Errorf("Expected lower-confidence E2 to lose the window, got:\n%s", content)
	}
}

func TestGenerateOutOfRangeNoteRests(t *testing.T) {
	// Way above fret 24 on every string in a bass tuning.
	ext := &fakeExtractor{samples: []pitch.Sample{
		{Time: 0.0, Frequency: 392.0, Confidence: 0.9}, // G4 = 67; G2 open 43 -> fret 24 is playable
		{Time: 0.5, Frequency: 32.7, Confidence: 0.9},  // C1 = 24, below every open string except B0
	}}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentBass, "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(content, "G2|-24----|") {
		t.Errorf("Expected fret 24 on G2, got:\n%s", content)
	}
	// Second window unplayable in standard bass tuning: all strings rest.
	if !strings.Contains(content, "E1|------|") {
		t.Errorf("Expected rest cells for unplayable note, got:\n%s", content)
	}
}

func TestGenerateLineWrap(t *testing.T) {
	// 20 windows of the same note force a wrap after 16.
	var samples []pitch.Sample
	for i := 0; i < 20; i++ {
		samples = append(samples, pitch.Sample{
			Time:       float64(i) * 0.5,
			Frequency:  82.41,
			Confidence: 0.9,
		})
	}
	ext := &fakeExtractor{samples: samples}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentGuitar, "standard")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	count := strings.Count(content, "E2|")
	if count != 2 {
		t.Errorf("Expected 2 wrapped E2 lines, got %d:\n%s", count, content)
	}
}

func TestGeneratePiano(t *testing.T) {
	var samples []pitch.Sample
	for i := 0; i < 25; i++ {
		samples = append(samples, pitch.Sample{
			Time:       float64(i) * 0.1,
			Frequency:  261.63, // C4
			Confidence: 0.9,
		})
	}
	ext := &fakeExtractor{samples: samples}
	m := NewMapper(ext, nil)

	content, err := m.Generate(context.Background(), "stem.wav", domain.InstrumentPiano, "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !strings.HasPrefix(content, "Piano Notation (Simplified)\n") {
		t.Errorf("Unexpected header: %q", strings.SplitN(content, "\n", 2)[0])
	}
	if !strings.Contains(content, "Time | Note | Octave") {
		t.Error("Expected column header in piano notation")
	}

	// Every 10th of 25 samples: indexes 0, 10, 20.
	rows := strings.Count(content, "| C    | 4")
	if rows != 3 {
		t.Errorf("Expected 3 sampled rows, got %d:\n%s", rows, content)
	}
}
