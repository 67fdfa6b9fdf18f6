// Package sound plays the companion's short sound cues.
package sound

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// SampleRate is the speaker rate; cues in other rates are resampled on load.
const SampleRate = beep.SampleRate(44100)

const resampleQuality = 4

var ErrUnsupported = errors.New("sound: unsupported file type")

// Player holds decoded cues in memory and plays them by name.
type Player struct {
	mu      sync.Mutex
	cues    map[string]*beep.Buffer
	enabled bool
	volume  float64
	ready   bool

	initSpeaker func(sr beep.SampleRate, bufferSize int) error
	play        func(s ...beep.Streamer)
}

// NewPlayer creates a player with the given default volume in [0,1].
func NewPlayer(volume float64, enabled bool) *Player {
	return &Player{
		cues:        map[string]*beep.Buffer{},
		enabled:     enabled,
		volume:      clamp01(volume),
		initSpeaker: speaker.Init,
		play:        speaker.Play,
	}
}

// Init opens the audio device. Without it every Play is a no-op.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := p.initSpeaker(SampleRate, SampleRate.N(time.Second/20)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	p.ready = true
	return nil
}

// Load decodes every cue in files (cue name to file name, relative to dir).
// A cue that fails to load is logged once and stays silent for good.
func (p *Player) Load(dir string, files map[string]string) int {
	loaded := 0
	for name, file := range files {
		path := filepath.Join(dir, file)
		buf, err := decodeFile(path)
		if err != nil {
			log.Printf("[Sound] Warning: could not load cue %q from %s: %v", name, path, err)
			continue
		}
		p.mu.Lock()
		p.cues[name] = buf
		p.mu.Unlock()
		loaded++
	}
	log.Printf("[Sound] Loaded %d/%d cues from %s", loaded, len(files), dir)
	return loaded
}

func decodeFile(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding: %w", err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != SampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, SampleRate, streamer)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	return buf, nil
}

// Play starts cue name at volume in [0,1]; a negative volume uses the
// player's default. Unknown cues are ignored.
func (p *Player) Play(name string, volume float64) {
	p.mu.Lock()
	buf, ok := p.cues[name]
	if !ok || !p.enabled || !p.ready {
		p.mu.Unlock()
		return
	}
	if volume < 0 {
		volume = p.volume
	}
	p.mu.Unlock()

	volume = clamp01(volume)
	p.play(&effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   math.Log2(volume),
		Silent:   volume == 0,
	})
}

func (p *Player) Loaded(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.cues[name]
	return ok
}

func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	p.volume = clamp01(v)
	p.mu.Unlock()
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
