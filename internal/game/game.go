// Package game is the ebiten front end: it ticks the heart, routes mouse
// input and dialog results to the session and paints every frame.
package game

import (
	"errors"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/heart-companion/internal/companion"
	"github.com/iburimskiy/heart-companion/internal/config"
	"github.com/iburimskiy/heart-companion/internal/heart"
	"github.com/iburimskiy/heart-companion/internal/mood"
)

type Options struct {
	Heart    *heart.State
	Session  *companion.Session
	Animator *mood.Animator
	Sounds   companion.Sounds
	Prompter Prompter
	Font     *text.GoTextFaceSource

	// OnSoundsToggled is called after the menu flips sound playback.
	OnSoundsToggled func(on bool)

	// Now defaults to time.Now.
	Now func() time.Time
}

const menuClickVolume = 0.3

// dialogResult comes back from a dialog goroutine.
type dialogResult struct {
	cmd   companion.Command
	typed bool // chat entry text rather than a menu pick
	text  string
	err   error
}

type Game struct {
	heart    *heart.State
	session  *companion.Session
	animator *mood.Animator
	sounds   companion.Sounds
	prompter Prompter
	font     *text.GoTextFaceSource
	onSounds func(on bool)
	now      func() time.Time

	// time of the last Update; Draw renders the heart at this instant
	frameTime time.Time

	heartImg *ebiten.Image
	drag     dragger

	dialogs    chan dialogResult
	dialogOpen bool
}

// New wires the game and starts the idle scheduler and heartbeat.
func New(opts Options) (*Game, error) {
	if opts.Heart == nil || opts.Session == nil || opts.Animator == nil {
		return nil, errors.New("game: heart, session and animator are required")
	}
	g := &Game{
		heart:    opts.Heart,
		session:  opts.Session,
		animator: opts.Animator,
		sounds:   opts.Sounds,
		prompter: opts.Prompter,
		font:     opts.Font,
		onSounds: opts.OnSoundsToggled,
		now:      opts.Now,
		dialogs:  make(chan dialogResult, 1),
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.prompter == nil {
		g.prompter = ZenityPrompter{}
	}
	if g.font == nil {
		src, err := LoadFont("")
		if err != nil {
			return nil, err
		}
		g.font = src
	}

	now := g.now()
	g.frameTime = now
	g.animator.Start(now)
	g.session.Start(now)
	return g, nil
}

func (g *Game) Update() error {
	now := g.now()
	g.frameTime = now

	g.session.SetMinimized(ebiten.IsWindowMinimized(), now)
	g.heart.Advance(now)
	g.animator.Poll(now)
	g.session.Update(now)

	select {
	case res := <-g.dialogs:
		if err := g.handleDialog(res, now); err != nil {
			return err
		}
	default:
	}

	g.handleMouse(now)

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) handleMouse(now time.Time) {
	cx, cy := ebiten.CursorPosition()
	onHeart := g.heart.Bounds().Contains(float64(cx-config.HeartX), float64(cy-config.HeartY))
	g.heart.SetHover(onHeart)

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.drag.begin(cx, cy)
		switch {
		case onHeart:
			g.session.Click(now)
		case inDialogue(cx, cy):
			if _, shown := g.session.Dialogue(); shown {
				g.session.HideDialogue()
			}
		}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if dx, dy := g.drag.delta(cx, cy); dx != 0 || dy != 0 {
			wx, wy := ebiten.WindowPosition()
			ebiten.SetWindowPosition(wx+dx, wy+dy)
		}
	} else {
		g.drag.end()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.openMenu()
	}
}

func inDialogue(x, y int) bool {
	return x >= config.DialogueX && x < config.DialogueX+config.DialogueWidth &&
		y >= config.DialogueY && y < config.DialogueY+config.DialogueHeight
}

// openMenu shows the context menu off the UI goroutine; the pick arrives
// through g.dialogs. Only one dialog is open at a time.
func (g *Game) openMenu() {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	soundsOn := g.sounds != nil && g.sounds.Enabled()
	if soundsOn {
		g.sounds.Play("ui_click", menuClickVolume)
	}
	items := companion.MenuItems(soundsOn)
	go func() {
		label, err := g.prompter.Menu(items)
		g.dialogs <- dialogResult{cmd: companion.CommandFor(label), err: err}
	}()
}

func (g *Game) openChat() {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	go func() {
		msg, err := g.prompter.Entry()
		g.dialogs <- dialogResult{cmd: companion.CmdChat, typed: true, text: msg, err: err}
	}()
}

func (g *Game) handleDialog(res dialogResult, now time.Time) error {
	g.dialogOpen = false
	if res.err != nil {
		if !errors.Is(res.err, zenity.ErrCanceled) {
			log.Printf("[Game] Dialog failed: %v", res.err)
		}
		return nil
	}
	if res.typed {
		g.session.Chat(res.text, now)
		return nil
	}

	switch res.cmd {
	case companion.CmdChat:
		g.openChat()
	case companion.CmdPoke:
		g.session.Poke(now)
	case companion.CmdAskMood:
		g.session.AskMood(now)
	case companion.CmdToggleSounds:
		on := g.session.ToggleSounds(now)
		log.Printf("[Game] Sounds enabled: %v", on)
		if g.onSounds != nil {
			g.onSounds(on)
		}
	case companion.CmdQuit:
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.WindowWidth, config.WindowHeight
}
