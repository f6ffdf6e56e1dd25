// Package tablature maps pitch contours onto fretted-instrument
// tablature and simplified piano notation.
package tablature

import (
	"fmt"
	"math"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var noteIndex = func() map[string]int {
	m := make(map[string]int, len(noteNames))
	for i, n := range noteNames {
		m[n] = i
	}
	return m
}()

// NoteForFrequency converts a frequency in Hz to its nearest equal-
// tempered note name and octave (A4 = 440 Hz). Non-positive
// frequencies are unvoiced and report ok = false.
func NoteForFrequency(freq float64) (note string, octave int, ok bool) {
	if freq <= 0 {
		return "", 0, false
	}
	n := int(math.Round(12*math.Log2(freq/440.0) + 69))
	idx := ((n % 12) + 12) % 12
	octave = int(math.Floor(float64(n)/12.0)) - 1
	return noteNames[idx], octave, true
}

// AbsolutePitch returns the semitone number of a note (A4 = 69), such
// that the distance between two pitches is their fret offset.
func AbsolutePitch(note string, octave int) (int, error) {
	idx, found := noteIndex[note]
	if !found {
		return 0, fmt.Errorf("unknown note name: %q", note)
	}
	return (octave+1)*12 + idx, nil
}

// pitchLabel renders a semitone number back to its display name, e.g.
// 40 -> "E2".
func pitchLabel(pitch int) string {
	return fmt.Sprintf("%s%d", noteNames[((pitch%12)+12)%12], pitch/12-1)
}
