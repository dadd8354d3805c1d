package logger

import (
	"fmt"
	"strings"
	"sync"
)

// ProgressBar represents a simple progress bar
type ProgressBar struct {
	mu      sync.Mutex
	total   int
	current int
	width   int
	message string
	done    bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(total int, message string) *ProgressBar {
	return &ProgressBar{
		total:   total,
		width:   40,
		message: message,
	}
}

// Update sets the current position, clamped to [0, total]
func (p *ProgressBar) Update(current int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.draw()
}

// Increment increments the progress bar by 1
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.draw()
}

// Finish fills the bar and ends the line
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = p.total
	p.draw()
	p.end()
}

// Stop ends the line where the bar currently stands
func (p *ProgressBar) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draw()
	p.end()
}

// Percent returns the completed fraction in [0, 1]
func (p *ProgressBar) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent()
}

func (p *ProgressBar) percent() float64 {
	if p.total <= 0 {
		return 1
	}
	f := float64(p.current) / float64(p.total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func (p *ProgressBar) end() {
	if p.done {
		return
	}
	p.done = true
	w, _ := console()
	fmt.Fprintln(w)
}

func (p *ProgressBar) draw() {
	if p.done {
		return
	}
	w, colored := console()
	percent := p.percent()
	filled := int(percent * float64(p.width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	if colored {
		fmt.Fprintf(w, "\r%s: %s%s%s %3.0f%%", p.message, colorGreen, bar, colorReset, percent*100)
	} else {
		fmt.Fprintf(w, "\r%s: [%s] %3.0f%%", p.message, bar, percent*100)
	}
}
