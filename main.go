package main

import (
	"errors"
	"flag"
	"log"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/heart-companion/internal/companion"
	"github.com/iburimskiy/heart-companion/internal/config"
	"github.com/iburimskiy/heart-companion/internal/game"
	"github.com/iburimskiy/heart-companion/internal/heart"
	"github.com/iburimskiy/heart-companion/internal/llm"
	"github.com/iburimskiy/heart-companion/internal/mood"
	"github.com/iburimskiy/heart-companion/internal/sound"
)

const (
	appName        = "heart_companion"
	llmQueueSize   = 4
	windowMarginPx = 40
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	noLLM := flag.Bool("no-llm", false, "run without the language model")
	soundsDir := flag.String("sounds", "", "directory with sound cues (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		_ = zenity.Error(err.Error(), zenity.Title("Ruby"))
		log.Fatalf("[Main] %v", err)
	}
	if *noLLM {
		cfg.LLM.Enabled = false
	}
	if *soundsDir != "" {
		cfg.Sound.Dir = *soundsDir
	}

	settings := config.OpenSettings(appName)
	prefs := settings.Settings()

	player := sound.NewPlayer(prefs.SoundVolume, prefs.SoundsEnabled)
	if err := player.Init(); err != nil {
		log.Printf("[Main] Warning: %v (sounds disabled)", err)
	}
	player.Load(cfg.Sound.Dir, cfg.Sound.Files)

	var (
		backend    companion.Backend
		dispatcher *llm.Dispatcher
	)
	switch {
	case !cfg.LLM.Enabled:
		log.Println("[Main] Language model disabled")
	case cfg.LLM.APIKey == "":
		log.Println("[Main] No API key set (HEART_API_KEY or GEMINI_API_KEY); language model disabled")
	default:
		client := llm.NewClient(llm.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			APIKey:  cfg.LLM.APIKey,
			Timeout: cfg.LLM.Timeout,
		})
		dispatcher = llm.NewDispatcher(client, cfg.LLM.Workers, llmQueueSize)
		backend = dispatcher
		log.Printf("[Main] Using model %s with %d workers", client.Model(), cfg.LLM.Workers)
	}

	font, err := game.LoadFont(cfg.FontPath)
	if err != nil {
		log.Printf("[Main] Warning: %v (using the built-in font)", err)
	}

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	state := heart.NewState(config.HeartWidth, config.HeartHeight, rng)
	animator := mood.NewAnimator(state, player, cfg.Idle.MinDelay, cfg.Idle.MaxDelay, rng)
	session := companion.NewSession(state, backend, animator, player, rng)

	g, err := game.New(game.Options{
		Heart:    state,
		Session:  session,
		Animator: animator,
		Sounds:   player,
		Font:     font,
		OnSoundsToggled: func(on bool) {
			settings.SetSoundsEnabled(on)
			if err := settings.Save(); err != nil {
				log.Printf("[Main] Warning: %v", err)
			}
		},
	})
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Ruby")
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowFloating(true)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	if sw, sh := ebiten.Monitor().Size(); sw > 0 && sh > 0 {
		ebiten.SetWindowPosition(sw-config.WindowWidth-windowMarginPx, sh-config.WindowHeight-windowMarginPx)
	}

	runErr := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{ScreenTransparent: true})

	animator.Stop()
	if dispatcher != nil {
		dispatcher.Shutdown(config.ShutdownGrace)
	}
	if err := settings.Save(); err != nil {
		log.Printf("[Main] Warning: %v", err)
	}

	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		log.Fatalf("[Main] %v", runErr)
	}
	log.Println("[Main] Bye")
}
