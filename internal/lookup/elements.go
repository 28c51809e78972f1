package lookup

import "sync"

// Button is an in-process Trigger. Click runs every registered reaction.
type Button struct {
	mu        sync.Mutex
	reactions []func()
}

func (b *Button) OnActivate(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reactions = append(b.reactions, fn)
}

func (b *Button) Click() {
	b.mu.Lock()
	reactions := append([]func(){}, b.reactions...)
	b.mu.Unlock()

	for _, fn := range reactions {
		fn()
	}
}

// TextElement is an in-process Output.
type TextElement struct {
	mu   sync.Mutex
	text string
}

func NewTextElement(initial string) *TextElement {
	return &TextElement{text: initial}
}

func (e *TextElement) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
}

func (e *TextElement) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}
