package companion

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/iburimskiy/heart-companion/internal/config"
	"github.com/iburimskiy/heart-companion/internal/heart"
	"github.com/iburimskiy/heart-companion/internal/llm"
	"github.com/iburimskiy/heart-companion/internal/mood"
)

type fakeHeart struct {
	text      string
	color     string
	hz        float64
	longForm  bool
	visible   bool
	triggered []heart.Kind
}

func (h *fakeHeart) SetDisplayText(text string) { h.text = text }
func (h *fakeHeart) DisplayText() string        { return h.text }
func (h *fakeHeart) SetColor(hex string)        { h.color = hex }
func (h *fakeHeart) SetPulsation(hz float64)    { h.hz = heart.ClampFrequency(hz) }
func (h *fakeHeart) Frequency() float64         { return h.hz }
func (h *fakeHeart) SetLongFormVisible(v bool)  { h.longForm = v }
func (h *fakeHeart) SetVisible(v bool)          { h.visible = v }
func (h *fakeHeart) Trigger(k heart.Kind, _ time.Time) bool {
	h.triggered = append(h.triggered, k)
	return true
}

type fakeBackend struct {
	reqs    []llm.Request
	results chan llm.Result
	err     error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{results: make(chan llm.Result, 8)}
}

func (b *fakeBackend) Submit(r llm.Request) (uint64, error) {
	if b.err != nil {
		return 0, b.err
	}
	r.Seq = uint64(len(b.reqs) + 1)
	b.reqs = append(b.reqs, r)
	return r.Seq, nil
}

func (b *fakeBackend) Results() <-chan llm.Result { return b.results }

func (b *fakeBackend) reply(i int, p mood.Payload) {
	b.results <- llm.Result{Request: b.reqs[i], Payload: p}
}

func (b *fakeBackend) fail(i int, err error) {
	b.results <- llm.Result{Request: b.reqs[i], Err: err}
}

type fakeAnim struct {
	pokes  int
	reacts []mood.Payload
}

func (a *fakeAnim) Poke(time.Time)           { a.pokes++ }
func (a *fakeAnim) React(p mood.Payload) int { a.reacts = append(a.reacts, p); return 0 }

type cue struct {
	name   string
	volume float64
}

type fakeSounds struct {
	on     bool
	played []cue
}

func (s *fakeSounds) Play(name string, volume float64) {
	s.played = append(s.played, cue{name, volume})
}
func (s *fakeSounds) Enabled() bool      { return s.on }
func (s *fakeSounds) SetEnabled(on bool) { s.on = on }

func (s *fakeSounds) count(name string) int {
	n := 0
	for _, c := range s.played {
		if c.name == name {
			n++
		}
	}
	return n
}

var t0 = time.Unix(1_700_000_000, 0)

type fixture struct {
	s       *Session
	heart   *fakeHeart
	backend *fakeBackend
	anim    *fakeAnim
	sounds  *fakeSounds
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		heart:   &fakeHeart{visible: true},
		backend: newFakeBackend(),
		anim:    &fakeAnim{},
		sounds:  &fakeSounds{on: true},
	}
	f.s = NewSession(f.heart, f.backend, f.anim, f.sounds, rand.New(rand.NewPCG(3, 4)))
	return f
}

var happy = mood.Payload{ShortText: "Yay!", LongText: "I'm so happy", Color: "#FFB6C1", PulseHz: 6}

func TestNewSessionRests(t *testing.T) {
	f := newFixture(t)
	if f.heart.text != config.DefaultText || f.heart.color != heart.DefaultColor || f.heart.hz != config.DefaultPulseHz {
		t.Errorf("resting look: %+v", f.heart)
	}
}

func TestChatSendsRequest(t *testing.T) {
	f := newFixture(t)

	f.s.Chat("   ", t0)
	if len(f.backend.reqs) != 0 {
		t.Fatal("blank chat was sent")
	}

	f.s.Chat(" hello ", t0)
	if len(f.backend.reqs) != 1 {
		t.Fatalf("requests: %d", len(f.backend.reqs))
	}
	r := f.backend.reqs[0]
	if r.Interaction != llm.Chat || r.HistoryEntry != "hello" || !strings.Contains(r.Prompt, "User says: 'hello'") {
		t.Errorf("request: %+v", r)
	}
	if f.heart.text != config.ThinkingText {
		t.Errorf("text while thinking: %q", f.heart.text)
	}
}

func TestReplyApplied(t *testing.T) {
	f := newFixture(t)
	f.s.Chat("hello", t0)
	f.backend.reply(0, happy)

	now := t0.Add(time.Second)
	f.s.Update(now)

	h := f.heart
	if h.text != "Yay!" || h.color != "#FFB6C1" || h.hz != 6 || !h.longForm {
		t.Errorf("heart after reply: %+v", h)
	}
	if text, shown := f.s.Dialogue(); !shown || text != "I'm so happy" {
		t.Errorf("dialogue: %q %v", text, shown)
	}
	if len(f.anim.reacts) != 1 || f.anim.reacts[0] != happy {
		t.Errorf("react calls: %v", f.anim.reacts)
	}
	if f.sounds.count("message_receive") != 1 {
		t.Errorf("cues: %v", f.sounds.played)
	}
	if hist := f.s.History(); len(hist) != 1 || hist[0] != (llm.Exchange{User: "hello", Reply: "I'm so happy"}) {
		t.Errorf("history: %v", hist)
	}

	f.s.Update(now.Add(config.OutputHideTimeout - time.Millisecond))
	if _, shown := f.s.Dialogue(); !shown {
		t.Fatal("dialogue hidden early")
	}

	f.s.Update(now.Add(config.OutputHideTimeout))
	if _, shown := f.s.Dialogue(); shown {
		t.Fatal("dialogue still shown")
	}
	if h.text != config.DefaultText || h.color != heart.DefaultColor || h.hz != config.DefaultPulseHz || h.longForm {
		t.Errorf("heart after timeout: %+v", h)
	}
}

func TestErrorResult(t *testing.T) {
	f := newFixture(t)
	f.s.AskMood(t0)
	f.backend.fail(0, errors.New("quota exceeded"))

	f.s.Update(t0)

	h := f.heart
	if h.text != config.ErrorText || h.color != config.ErrorHeartColor || h.hz != config.ErrorPulseHz {
		t.Errorf("heart after error: %+v", h)
	}
	text, shown := f.s.Dialogue()
	if !shown || !strings.Contains(text, "quota exceeded") {
		t.Errorf("dialogue: %q %v", text, shown)
	}
	if len(f.s.History()) != 0 {
		t.Error("failed exchange was remembered")
	}

	f.s.Update(t0.Add(config.OutputHideTimeout))
	if _, shown := f.s.Dialogue(); !shown {
		t.Error("error dialogue hidden after the reply timeout")
	}
	f.s.Update(t0.Add(config.ErrorHideTimeout))
	if _, shown := f.s.Dialogue(); shown {
		t.Error("error dialogue still shown")
	}
}

func TestSubmitFailures(t *testing.T) {
	f := newFixture(t)
	f.backend.err = llm.ErrQueueFull
	f.s.Chat("hi", t0)
	if text, _ := f.s.Dialogue(); !strings.Contains(text, llm.ErrQueueFull.Error()) {
		t.Errorf("dialogue: %q", text)
	}

	offline := NewSession(&fakeHeart{}, nil, &fakeAnim{}, &fakeSounds{}, nil)
	offline.Chat("hi", t0)
	if text, shown := offline.Dialogue(); !shown || !strings.Contains(text, ErrOffline.Error()) {
		t.Errorf("offline dialogue: %q %v", text, shown)
	}
	offline.Update(t0)
}

func TestHistoryIsCapped(t *testing.T) {
	f := newFixture(t)
	now := t0
	for i := 0; i < 9; i++ {
		f.s.Chat(string(rune('a'+i)), now)
		f.backend.reply(i, mood.Payload{ShortText: "ok", LongText: string(rune('A' + i))})
		f.s.Update(now)
		now = now.Add(time.Second)
	}

	hist := f.s.History()
	if len(hist) != config.MaxHistoryExchanges {
		t.Fatalf("history length %d", len(hist))
	}
	if hist[0].User != "d" || hist[5].User != "i" || hist[5].Reply != "I" {
		t.Errorf("history: %v", hist)
	}

	f.s.Chat("next", now)
	last := f.backend.reqs[len(f.backend.reqs)-1]
	if !strings.Contains(last.Prompt, "User: h\nRuby: H") || strings.Contains(last.Prompt, "User: c\n") {
		t.Errorf("prompt history wrong:\n%s", last.Prompt)
	}
}

func TestPokeAndMood(t *testing.T) {
	f := newFixture(t)
	f.s.Poke(t0)
	f.s.AskMood(t0)

	if f.anim.pokes != 1 {
		t.Errorf("pokes: %d", f.anim.pokes)
	}
	if r := f.backend.reqs[0]; r.Interaction != llm.PokeReaction || r.HistoryEntry != pokeEntry {
		t.Errorf("poke request: %+v", r)
	}
	if r := f.backend.reqs[1]; r.Interaction != llm.MoodQuery || r.HistoryEntry != moodEntry {
		t.Errorf("mood request: %+v", r)
	}
}

func TestStaleReplyStillApplies(t *testing.T) {
	f := newFixture(t)
	f.s.Chat("first", t0)
	f.s.Chat("second", t0)

	f.backend.reply(1, mood.Payload{ShortText: "two", LongText: "2"})
	f.backend.reply(0, mood.Payload{ShortText: "one", LongText: "1"})
	f.s.Update(t0)

	if f.heart.text != "one" {
		t.Errorf("last delivered reply should win, got %q", f.heart.text)
	}
	if len(f.s.History()) != 2 {
		t.Errorf("history: %v", f.s.History())
	}
}

func TestClickQuickResponse(t *testing.T) {
	f := newFixture(t)
	f.s.Click(t0)

	if len(f.heart.triggered) != 1 || f.heart.triggered[0] != heart.Press {
		t.Errorf("triggered: %v", f.heart.triggered)
	}
	if len(f.sounds.played) != 1 || f.sounds.played[0] != (cue{"ui_click", 0.5}) {
		t.Errorf("cues: %v", f.sounds.played)
	}
	if !isQuickResponse(f.heart.text) {
		t.Fatalf("text after click: %q", f.heart.text)
	}

	// a second click inside the window keeps the text from before the first
	f.s.Click(t0.Add(100 * time.Millisecond))
	f.s.Update(t0.Add(100*time.Millisecond + config.ClickTextRestore - time.Millisecond))
	if !isQuickResponse(f.heart.text) {
		t.Fatalf("restored early: %q", f.heart.text)
	}
	f.s.Update(t0.Add(100*time.Millisecond + config.ClickTextRestore))
	if f.heart.text != config.DefaultText {
		t.Errorf("text after restore: %q", f.heart.text)
	}
}

func TestClickDoesNotOverwriteReply(t *testing.T) {
	f := newFixture(t)
	f.s.Click(t0)
	f.s.Chat("hi", t0)
	f.backend.reply(0, happy)
	f.s.Update(t0.Add(100 * time.Millisecond))

	f.s.Update(t0.Add(config.ClickTextRestore))
	if f.heart.text != "Yay!" {
		t.Errorf("reply text replaced: %q", f.heart.text)
	}

	f.s.Click(t0.Add(time.Second))
	if f.heart.text != "Yay!" {
		t.Errorf("quick response shown over a reply: %q", f.heart.text)
	}
}

func TestHeartbeat(t *testing.T) {
	f := newFixture(t)
	f.s.Start(t0)

	next, ok := f.s.NextBeat()
	if !ok || !next.Equal(t0.Add(time.Second)) {
		t.Fatalf("first beat at %v (%v)", next, ok)
	}
	f.s.Update(t0.Add(999 * time.Millisecond))
	if f.sounds.count("heartbeat_soft") != 0 {
		t.Fatal("beat played early")
	}
	f.s.Update(t0.Add(time.Second))
	if got := f.sounds.played[len(f.sounds.played)-1]; got.name != "heartbeat_soft" || !approx(got.volume, 0.4) {
		t.Errorf("soft beat: %+v", got)
	}

	now := t0.Add(2 * time.Second)
	f.s.Chat("hi", now)
	f.backend.reply(0, happy)
	f.s.Update(now)
	next, _ = f.s.NextBeat()
	if want := now.Add(time.Second / 6); !next.Equal(want) {
		t.Errorf("beat after reply at %v, want %v", next, want)
	}
	f.s.Update(next)
	if got := f.sounds.played[len(f.sounds.played)-1]; got.name != "heartbeat_fast" || !approx(got.volume, 0.4+6*0.08) {
		t.Errorf("fast beat: %+v", got)
	}

	f.s.Chat("faster", next)
	f.backend.reply(1, mood.Payload{ShortText: "!!", PulseHz: 15})
	f.s.Update(next)
	if n, _ := f.s.NextBeat(); !n.Equal(next.Add(minBeatInterval)) {
		t.Errorf("beat interval below the floor: %v", n.Sub(next))
	}
}

func TestToggleSounds(t *testing.T) {
	f := newFixture(t)
	f.s.Start(t0)

	if on := f.s.ToggleSounds(t0); on || f.sounds.on {
		t.Fatal("sounds still on")
	}
	if _, ok := f.s.NextBeat(); ok {
		t.Error("heartbeat armed while muted")
	}
	f.s.Update(t0.Add(5 * time.Second))
	if f.sounds.count("heartbeat_soft") != 0 {
		t.Error("beat while muted")
	}

	now := t0.Add(10 * time.Second)
	if on := f.s.ToggleSounds(now); !on {
		t.Fatal("sounds still off")
	}
	if next, ok := f.s.NextBeat(); !ok || !next.Equal(now.Add(time.Second)) {
		t.Errorf("beat after unmute: %v %v", next, ok)
	}
}

func TestMinimize(t *testing.T) {
	f := newFixture(t)
	f.s.Start(t0)

	f.s.SetMinimized(true, t0)
	if f.heart.text != config.SleepingText || f.heart.visible || !f.s.Minimized() {
		t.Errorf("minimized heart: %+v", f.heart)
	}
	if _, ok := f.s.NextBeat(); ok {
		t.Error("heartbeat armed while minimized")
	}

	f.s.SetMinimized(false, t0.Add(time.Second))
	if f.heart.text != config.DefaultText || !f.heart.visible {
		t.Errorf("restored heart: %+v", f.heart)
	}
	if _, ok := f.s.NextBeat(); !ok {
		t.Error("heartbeat not re-armed")
	}

	f.s.Chat("hi", t0)
	f.backend.reply(0, happy)
	f.s.Update(t0.Add(time.Second))
	f.s.SetMinimized(true, t0.Add(2*time.Second))
	f.s.SetMinimized(false, t0.Add(3*time.Second))
	if f.heart.text != "Yay!" {
		t.Errorf("text with a reply on screen: %q", f.heart.text)
	}

	// the dialogue times out while asleep
	f.s.SetMinimized(true, t0.Add(4*time.Second))
	f.s.Update(t0.Add(time.Second + config.OutputHideTimeout))
	if f.heart.text != config.SleepingText {
		t.Errorf("text after timeout while asleep: %q", f.heart.text)
	}
	f.s.SetMinimized(false, t0.Add(time.Minute))
	if f.heart.text != config.DefaultText {
		t.Errorf("text after waking: %q", f.heart.text)
	}
}

func TestReplyWhileMinimized(t *testing.T) {
	f := newFixture(t)
	f.s.Start(t0)
	f.s.Chat("hi", t0)
	f.s.SetMinimized(true, t0.Add(time.Second))

	f.backend.reply(0, happy)
	f.s.Update(t0.Add(2 * time.Second))
	if f.heart.text != config.SleepingText {
		t.Errorf("text while minimized: %q", f.heart.text)
	}

	f.s.SetMinimized(false, t0.Add(3*time.Second))
	if f.heart.text != "Yay!" {
		t.Errorf("text after restore: %q, want the reply", f.heart.text)
	}
	if text, shown := f.s.Dialogue(); !shown || text != happy.LongText {
		t.Errorf("dialogue: %q %v", text, shown)
	}
}

func TestErrorWhileMinimized(t *testing.T) {
	f := newFixture(t)
	f.s.AskMood(t0)
	f.s.SetMinimized(true, t0)

	f.backend.fail(0, errors.New("timeout"))
	f.s.Update(t0.Add(time.Second))
	if f.heart.text != config.SleepingText {
		t.Errorf("text while minimized: %q", f.heart.text)
	}

	f.s.SetMinimized(false, t0.Add(2*time.Second))
	if f.heart.text != config.ErrorText {
		t.Errorf("text after restore: %q", f.heart.text)
	}
}

func TestMenu(t *testing.T) {
	for _, on := range []bool{true, false} {
		items := MenuItems(on)
		want := []Command{CmdChat, CmdPoke, CmdAskMood, CmdToggleSounds, CmdQuit}
		if len(items) != len(want) {
			t.Fatalf("items: %v", items)
		}
		for i, label := range items {
			if got := CommandFor(label); got != want[i] {
				t.Errorf("%q -> %v, want %v", label, got, want[i])
			}
		}
	}
	if CommandFor("something else") != CmdNone {
		t.Error("unknown label mapped to a command")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
