package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Spinner displays an animated spinner with a message while a blocking call
// runs, such as the connectivity check against the generation service.
type Spinner struct {
	out     io.Writer
	tty     bool
	message string
	frames  []string
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	current int
	started bool
}

// Default spinner frames (dots style)
var defaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		tty:     isTTY(out),
		message: message,
		frames:  defaultFrames,
		done:    make(chan struct{}),
	}
}

// Start begins the spinner animation. Without a terminal it prints the
// message once.
func (s *Spinner) Start() {
	if !s.tty {
		fmt.Fprintf(s.out, "%s...\n", s.message)
		return
	}

	s.started = true
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				frame := s.frames[s.current%len(s.frames)]
				s.current++
				s.mu.Unlock()
				fmt.Fprintf(s.out, "\r%s %s", Bold.Render(frame), s.message)
			}
		}
	}()
}

// Stop stops the spinner.
func (s *Spinner) Stop() {
	if !s.started {
		return
	}
	s.started = false
	close(s.done)
	s.wg.Wait()
}

// StopWithMessage stops the spinner and prints a final message.
func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	fmt.Fprintln(s.out, message)
}

// Progress displays a counter for batch passes: "Migrating (12/400) Notes/a.md".
type Progress struct {
	out     io.Writer
	tty     bool
	total   int
	current int
	message string
	mu      sync.Mutex
}

// NewProgress creates a progress indicator writing to out. It draws nothing
// unless out is a terminal.
func NewProgress(out io.Writer, message string, total int) *Progress {
	return &Progress{
		out:     out,
		tty:     isTTY(out),
		message: message,
		total:   total,
	}
}

// Increment advances the counter and shows the current item.
func (p *Progress) Increment(item string) {
	p.mu.Lock()
	p.current++
	current := p.current
	p.mu.Unlock()
	if p.tty {
		fmt.Fprintf(p.out, "\r\033[K%s %s %s", p.message, Muted.Render(fmt.Sprintf("(%d/%d)", current, p.total)), item)
	}
}

// Println prints a line above the counter.
func (p *Progress) Println(line string) {
	if p.tty {
		fmt.Fprint(p.out, "\r\033[K")
	}
	fmt.Fprintln(p.out, line)
}

// Done clears the counter line.
func (p *Progress) Done() {
	if p.tty {
		fmt.Fprint(p.out, "\r\033[K")
	}
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
