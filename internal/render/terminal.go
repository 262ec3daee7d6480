package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Terminal keys.
const (
	keyQuit   = 'q'
	keyButton = ' '
	keyStatus = 's'
	keyCtrlC  = 0x03
	keyEsc    = 0x1b
)

// RunTerminal draws the board on out until ctx is done or a quit key is
// read from in. When in is a terminal it is switched to raw mode for the
// duration. The key reader goroutine stays blocked on in after return.
func RunTerminal(ctx context.Context, b Board, opts Options, in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("render: raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), old)
	}

	keys := make(chan byte, 16)
	go readKeys(in, keys)

	t := &terminal{b: b, opts: opts, out: out, showStatus: opts.Status != nil}
	ticker := time.NewTicker(opts.check())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if t.key(k) {
				return nil
			}
		case <-ticker.C:
			t.poll()
		}
	}
}

func readKeys(in io.Reader, keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			keys <- buf[0]
		}
		if err != nil {
			return
		}
	}
}

type terminal struct {
	b          Board
	opts       Options
	out        io.Writer
	showStatus bool
}

// key handles one key and reports whether the frontend should quit.
func (t *terminal) key(k byte) bool {
	switch k {
	case keyQuit, keyCtrlC, keyEsc:
		return true
	case keyButton:
		t.b.RequestButtonPress()
	case keyStatus:
		t.showStatus = !t.showStatus && t.opts.Status != nil
	}
	return false
}

func (t *terminal) poll() {
	now := t.opts.now()
	if !t.b.PollTick(now) {
		return
	}
	f := t.b.RenderFrame(now, nil)

	var sb strings.Builder
	sb.WriteString("\x1b[H\x1b[2J")
	if t.opts.Title != "" {
		sb.WriteString(t.opts.Title + "\r\n\r\n")
	}
	sb.WriteString(strings.ReplaceAll(Grid(t.b.Table(), f.Lit), "\n", "\r\n"))
	sb.WriteString("\r\n\r\n")
	if t.showStatus {
		sb.WriteString(t.opts.Status() + "\r\n")
	}
	sb.WriteString("space: button  s: status  q: quit\r\n")

	fmt.Fprint(t.out, sb.String())
	t.opts.frame(f)
}
