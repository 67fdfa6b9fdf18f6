package config

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// Settings are the user choices that survive restarts.
type Settings struct {
	SoundsEnabled bool    `yaml:"soundsEnabled"`
	SoundVolume   float64 `yaml:"soundVolume"`
}

func DefaultSettings() *Settings {
	return &Settings{
		SoundsEnabled: true,
		SoundVolume:   0.6,
	}
}

const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// SettingsManager loads and saves Settings through gdata.
// A nil gdata manager keeps settings in memory only.
type SettingsManager struct {
	store    *gdata.Manager
	settings *Settings
}

// OpenSettings opens the platform data directory for appName and loads the
// saved settings. Failing to open storage is not fatal: the manager falls
// back to in-memory defaults.
func OpenSettings(appName string) *SettingsManager {
	store, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[Settings] Warning: storage unavailable: %v (settings will not persist)", err)
		store = nil
	}
	return NewSettingsManager(store)
}

func NewSettingsManager(store *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		store:    store,
		settings: DefaultSettings(),
	}
	if err := sm.Load(); err != nil {
		log.Printf("[Settings] Warning: failed to load settings: %v (using defaults)", err)
	}
	return sm
}

func (sm *SettingsManager) Load() error {
	if sm.store == nil || !sm.store.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.store.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.SoundVolume = clamp01(loaded.SoundVolume)
	sm.settings = loaded
	return nil
}

func (sm *SettingsManager) Save() error {
	if sm.store == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.store.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	log.Printf("[Settings] Settings saved")
	return nil
}

func (sm *SettingsManager) Settings() *Settings {
	return sm.settings
}

func (sm *SettingsManager) SetSoundsEnabled(enabled bool) {
	sm.settings.SoundsEnabled = enabled
}

func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clamp01(volume)
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
