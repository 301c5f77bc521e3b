package feedback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errBadMelody = errors.New("malformed RTTTL melody")

// Note is one parsed RTTTL note. Pitch is "p" for a pause.
type Note struct {
	Pitch      string
	Octave     int
	DurationMS int64
}

// Melody is a parsed ring-tone.
type Melody struct {
	Name  string
	Notes []Note
}

// TotalMS is the melody's playing time.
func (m Melody) TotalMS() int64 {
	var total int64
	for _, n := range m.Notes {
		total += n.DurationMS
	}
	return total
}

// ParseRTTTL parses "name:d=4,o=6,b=200:32e,32g,16c7" style ring-tones.
func ParseRTTTL(s string) (Melody, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Melody{}, fmt.Errorf("%w: want 3 sections, got %d", errBadMelody, len(parts))
	}
	m := Melody{Name: strings.TrimSpace(parts[0])}

	dur, oct, bpm := 4, 6, 63
	for _, kv := range strings.Split(parts[1], ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Melody{}, fmt.Errorf("%w: bad default %q", errBadMelody, kv)
		}
		switch k {
		case "d":
			dur = n
		case "o":
			oct = n
		case "b":
			bpm = n
		}
	}
	wholeMS := int64(60000*4) / int64(bpm)

	for _, raw := range strings.Split(parts[2], ",") {
		tok := strings.ToLower(strings.TrimSpace(raw))
		if tok == "" {
			continue
		}
		note, err := parseNote(tok, dur, oct, wholeMS)
		if err != nil {
			return Melody{}, err
		}
		m.Notes = append(m.Notes, note)
	}
	return m, nil
}

func parseNote(tok string, defDur, defOct int, wholeMS int64) (Note, error) {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	dur := defDur
	if i > 0 {
		n, err := strconv.Atoi(tok[:i])
		if err != nil || n <= 0 {
			return Note{}, fmt.Errorf("%w: bad duration in %q", errBadMelody, tok)
		}
		dur = n
	}
	if i >= len(tok) || !strings.ContainsRune("cdefgabhp", rune(tok[i])) {
		return Note{}, fmt.Errorf("%w: bad pitch in %q", errBadMelody, tok)
	}
	pitch := string(tok[i])
	i++
	if i < len(tok) && tok[i] == '#' {
		pitch += "#"
		i++
	}
	dotted := false
	if i < len(tok) && tok[i] == '.' {
		dotted = true
		i++
	}
	oct := defOct
	if i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		oct = int(tok[i] - '0')
		i++
	}
	if i < len(tok) && tok[i] == '.' {
		dotted = true
	}

	ms := wholeMS / int64(dur)
	if dotted {
		ms += ms / 2
	}
	return Note{Pitch: pitch, Octave: oct, DurationMS: ms}, nil
}
