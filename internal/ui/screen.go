// Package ui draws collapse progress in the terminal using tcell.
package ui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Screen wraps tcell.Screen with the few calls the renderer needs.
type Screen struct {
	screen    tcell.Screen
	done      chan struct{}
	closeOnce sync.Once
	buffer    int // capacity of the Events channel
}

// NewScreen creates and initializes a terminal screen.
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return Wrap(s)
}

// Wrap initializes an existing tcell screen, such as a simulation screen in tests.
func Wrap(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.HideCursor()
	s.Clear()
	return &Screen{screen: s, done: make(chan struct{}), buffer: 16}, nil
}

// Close finalizes the screen and restores terminal state.
func (s *Screen) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.screen.Fini()
	})
}

// Events pumps terminal events into a channel until the screen is closed.
// The channel is closed once the pump stops, even if nobody is reading.
func (s *Screen) Events() <-chan tcell.Event {
	ch := make(chan tcell.Event, s.buffer)
	go func() {
		defer close(ch)
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case ch <- ev:
			case <-s.done:
				return
			}
		}
	}()
	return ch
}

// Clear clears the screen buffer.
func (s *Screen) Clear() {
	s.screen.Clear()
}

// Show flushes the screen buffer to the terminal.
func (s *Screen) Show() {
	s.screen.Show()
}

// SetContent sets a single cell's content at the given position.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.screen.SetContent(x, y, r, nil, style)
}

// Content returns the rune and style drawn at the given position.
func (s *Screen) Content(x, y int) (rune, tcell.Style) {
	r, _, style, _ := s.screen.GetContent(x, y)
	return r, style
}

// Size returns the current terminal dimensions.
func (s *Screen) Size() (width, height int) {
	return s.screen.Size()
}

// Sync forces a complete redraw of the screen.
func (s *Screen) Sync() {
	s.screen.Sync()
}
