package game

import (
	"bytes"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/ncruces/zenity"
	"golang.org/x/image/font/gofont/goregular"
)

// Prompter shows the blocking dialogs: the context menu and the chat entry.
// Both return zenity.ErrCanceled when dismissed.
type Prompter interface {
	Menu(items []string) (string, error)
	Entry() (string, error)
}

// ZenityPrompter uses native dialogs.
type ZenityPrompter struct{}

func (ZenityPrompter) Menu(items []string) (string, error) {
	return zenity.List("What should Ruby do?", items, zenity.Title("Ruby"))
}

func (ZenityPrompter) Entry() (string, error) {
	return zenity.Entry("Say something to Ruby:", zenity.Title("Chat with Ruby"))
}

// LoadFont reads a TTF/OTF face from path, or the built-in Go font when path
// is empty.
func LoadFont(path string) (*text.GoTextFaceSource, error) {
	data := goregular.TTF
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing font %q: %w", path, err)
	}
	return src, nil
}
