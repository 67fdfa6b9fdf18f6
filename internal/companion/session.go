// Package companion is the conversation loop around the heart: it sends
// chats, pokes and mood questions to the model, applies the replies to the
// heart and times the dialogue box, click feedback and heartbeat sounds.
//
// A Session is driven from the UI goroutine only; model calls run in the
// llm.Dispatcher and come back through Update.
package companion

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/iburimskiy/heart-companion/internal/config"
	"github.com/iburimskiy/heart-companion/internal/heart"
	"github.com/iburimskiy/heart-companion/internal/llm"
	"github.com/iburimskiy/heart-companion/internal/mood"
)

var ErrOffline = errors.New("companion: language model disabled")

const (
	minBeatInterval = 150 * time.Millisecond
	softBeatBelowHz = 1.5

	pokePrompt    = "User poked you!"
	pokeEntry     = "[Action: Poked Ruby]"
	moodPrompt    = "User wants to know your mood."
	moodEntry     = "[Query: How are you feeling?]"
	errorDialogue = "Ruby Error: %v\n(Check the log for details and make sure the API key is correct)"
)

// Heart is the slice of heart.State the session drives.
type Heart interface {
	SetDisplayText(text string)
	DisplayText() string
	SetColor(hex string)
	SetPulsation(hz float64)
	Frequency() float64
	SetLongFormVisible(v bool)
	SetVisible(v bool)
	Trigger(k heart.Kind, now time.Time) bool
}

// Backend accepts model requests and returns their results.
type Backend interface {
	Submit(req llm.Request) (uint64, error)
	Results() <-chan llm.Result
}

type Animator interface {
	Poke(now time.Time)
	React(p mood.Payload) int
}

type Sounds interface {
	Play(name string, volume float64)
	Enabled() bool
	SetEnabled(on bool)
}

// Session owns the chat state of one companion window.
type Session struct {
	heart   Heart
	backend Backend
	anim    Animator
	sounds  Sounds
	rng     *rand.Rand

	history []llm.Exchange
	lastSeq uint64

	dialogue      string
	dialogueShown bool
	dialogueUntil time.Time

	textBeforeClick string
	restoreAt       time.Time
	textBeforeSleep string

	nextBeat  time.Time
	beating   bool
	minimized bool
}

// NewSession puts h into its resting look. backend may be nil, in which case
// every request fails with ErrOffline.
func NewSession(h Heart, backend Backend, anim Animator, sounds Sounds, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Session{
		heart:   h,
		backend: backend,
		anim:    anim,
		sounds:  sounds,
		rng:     rng,
	}
	s.rest()
	return s
}

// Start arms the heartbeat sound.
func (s *Session) Start(now time.Time) {
	s.armBeat(now, s.heart.Frequency())
}

// Update applies finished model requests and fires every timer due at now.
func (s *Session) Update(now time.Time) {
	s.poll(now)

	if s.dialogueShown && !now.Before(s.dialogueUntil) {
		s.HideDialogue()
	}

	if !s.restoreAt.IsZero() && !now.Before(s.restoreAt) {
		s.restoreAt = time.Time{}
		if isQuickResponse(s.heart.DisplayText()) {
			s.heart.SetDisplayText(s.textBeforeClick)
		}
	}

	if s.beating && !now.Before(s.nextBeat) {
		hz := s.heart.Frequency()
		if hz < softBeatBelowHz {
			s.play("heartbeat_soft", 0.3+hz*0.1)
		} else {
			s.play("heartbeat_fast", 0.4+hz*0.08)
		}
		s.armBeat(now, hz)
	}
}

func (s *Session) poll(now time.Time) {
	if s.backend == nil {
		return
	}
	for {
		select {
		case res := <-s.backend.Results():
			if res.Request.Seq < s.lastSeq {
				log.Printf("[Companion] Reply #%d arrived after #%d was sent", res.Request.Seq, s.lastSeq)
			}
			if res.Err != nil {
				s.showError(res.Err, now)
			} else {
				s.applyReply(res, now)
			}
		default:
			return
		}
	}
}

// Chat sends text typed by the user. Blank input is ignored.
func (s *Session) Chat(text string, now time.Time) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if s.dialogueShown {
		s.HideDialogue()
	}
	s.send(text, llm.Chat, text, now)
}

// Poke jiggles the heart and asks the model for a reaction.
func (s *Session) Poke(now time.Time) {
	s.anim.Poke(now)
	s.send(pokePrompt, llm.PokeReaction, pokeEntry, now)
}

func (s *Session) AskMood(now time.Time) {
	s.send(moodPrompt, llm.MoodQuery, moodEntry, now)
}

func (s *Session) send(text string, kind llm.Interaction, entry string, now time.Time) {
	if s.backend == nil {
		s.showError(ErrOffline, now)
		return
	}

	s.setText(config.ThinkingText)
	seq, err := s.backend.Submit(llm.Request{
		Prompt:       llm.BuildPrompt(text, kind, s.history),
		Interaction:  kind,
		HistoryEntry: entry,
	})
	if err != nil {
		s.showError(fmt.Errorf("submitting %s: %w", kind, err), now)
		return
	}
	s.lastSeq = seq
}

func (s *Session) applyReply(res llm.Result, now time.Time) {
	p := res.Payload
	s.play("message_receive", 0.7)

	s.setText(p.ShortText)
	s.heart.SetColor(p.Color)
	s.heart.SetPulsation(p.PulseHz)
	s.armBeat(now, heart.ClampFrequency(p.PulseHz))
	s.anim.React(p)

	s.showDialogue(p.LongText, now, config.OutputHideTimeout)

	if entry := res.Request.HistoryEntry; entry != "" {
		s.history = append(s.history, llm.Exchange{User: entry, Reply: p.LongText})
		if n := len(s.history); n > config.MaxHistoryExchanges {
			s.history = append(s.history[:0], s.history[n-config.MaxHistoryExchanges:]...)
		}
	}
}

func (s *Session) showError(err error, now time.Time) {
	log.Printf("[Companion] Error: %v", err)

	s.setText(config.ErrorText)
	s.heart.SetColor(config.ErrorHeartColor)
	s.heart.SetPulsation(config.ErrorPulseHz)
	s.armBeat(now, config.ErrorPulseHz)

	s.showDialogue(fmt.Sprintf(errorDialogue, err), now, config.ErrorHideTimeout)
}

func (s *Session) showDialogue(text string, now time.Time, d time.Duration) {
	s.dialogue = text
	s.dialogueShown = true
	s.dialogueUntil = now.Add(d)
	s.heart.SetLongFormVisible(true)
}

// HideDialogue closes the dialogue box and returns the heart to rest.
func (s *Session) HideDialogue() {
	s.dialogueShown = false
	s.dialogueUntil = time.Time{}
	s.heart.SetLongFormVisible(false)
	s.rest()
}

func (s *Session) rest() {
	s.heart.SetColor(heart.DefaultColor)
	s.heart.SetPulsation(config.DefaultPulseHz)
	s.setText(config.DefaultText)
}

// Click gives feedback for a left click on the heart: a squeeze, a click
// sound and, unless a reply is on screen, a quick response for a moment.
func (s *Session) Click(now time.Time) {
	s.heart.Trigger(heart.Press, now)
	s.play("ui_click", 0.5)

	if s.dialogueShown {
		return
	}
	before := s.heart.DisplayText()
	if before == "" {
		before = config.DefaultText
	}
	if !isQuickResponse(before) {
		s.textBeforeClick = before
	}
	s.heart.SetDisplayText(config.QuickResponses[s.rng.IntN(len(config.QuickResponses))])
	s.restoreAt = now.Add(config.ClickTextRestore)
}

// ToggleSounds flips sound playback and returns the new state.
func (s *Session) ToggleSounds(now time.Time) bool {
	on := !s.sounds.Enabled()
	s.sounds.SetEnabled(on)
	if on {
		s.armBeat(now, s.heart.Frequency())
	} else {
		s.beating = false
	}
	return on
}

// SetMinimized puts the heart to sleep while the window is iconified.
func (s *Session) SetMinimized(minimized bool, now time.Time) {
	if minimized == s.minimized {
		return
	}
	s.minimized = minimized
	s.heart.SetVisible(!minimized)

	if minimized {
		s.textBeforeSleep = s.heart.DisplayText()
		s.heart.SetDisplayText(config.SleepingText)
		s.beating = false
		return
	}
	if s.dialogueShown {
		s.heart.SetDisplayText(s.textBeforeSleep)
	} else {
		s.heart.SetDisplayText(config.DefaultText)
	}
	s.armBeat(now, s.heart.Frequency())
}

// setText shows text on the heart, or keeps it for the restore while the
// heart sleeps.
func (s *Session) setText(text string) {
	if s.minimized {
		s.textBeforeSleep = text
		return
	}
	s.heart.SetDisplayText(text)
}

func (s *Session) armBeat(now time.Time, hz float64) {
	if hz <= 0 || s.minimized || !s.sounds.Enabled() {
		s.beating = false
		return
	}
	interval := time.Duration(float64(time.Second) / hz)
	s.nextBeat = now.Add(max(minBeatInterval, interval))
	s.beating = true
}

func (s *Session) play(name string, volume float64) {
	s.sounds.Play(name, volume)
}

// Dialogue returns the long text and whether the dialogue box is showing.
func (s *Session) Dialogue() (string, bool) {
	return s.dialogue, s.dialogueShown
}

// History returns a copy of the remembered exchanges, oldest first.
func (s *Session) History() []llm.Exchange {
	return append([]llm.Exchange(nil), s.history...)
}

// NextBeat reports when the next heartbeat sound is due, if one is armed.
func (s *Session) NextBeat() (time.Time, bool) {
	return s.nextBeat, s.beating
}

func (s *Session) Minimized() bool {
	return s.minimized
}

func isQuickResponse(text string) bool {
	for _, q := range config.QuickResponses {
		if text == q {
			return true
		}
	}
	return false
}
