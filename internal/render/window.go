//go:build !headless

package render

import (
	"context"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/sweeney/binw2-sim/internal/topology"
)

// statusHeight is the band below the board reserved for the status line.
const statusHeight = 16

var (
	colorCharlie   = color.RGBA{R: 0x30, G: 0x50, B: 0xff, A: 0xff}
	colorIndicator = color.RGBA{R: 0xe0, G: 0x20, B: 0xe0, A: 0xff}
	colorStatus    = color.RGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
)

// RunWindow opens a desktop window showing the board. It blocks until the
// window is closed, a quit key is pressed or ctx is done, and must be called
// from the main goroutine.
func RunWindow(ctx context.Context, b Board, opts Options) error {
	g := newGame(ctx, b, opts)

	title := opts.Title
	if title == "" {
		title = "binw2"
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(g.width*2, g.height*2)
	ebiten.SetTPS(int(1e9 / opts.check()))
	ebiten.SetScreenClearedEveryFrame(false)
	return ebiten.RunGame(g)
}

type game struct {
	ctx  context.Context
	b    Board
	opts Options

	width, height int
	boardHeight   float32
	white         *ebiten.Image
	vs            []ebiten.Vertex
	is            []uint16

	pending     bool // board redraw dispatched by PollTick
	statusDirty bool
	showStatus  bool
}

func newGame(ctx context.Context, b Board, opts Options) *game {
	w, h := b.Table().Size()
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)

	return &game{
		ctx:         ctx,
		b:           b,
		opts:        opts,
		width:       int(w),
		height:      int(h) + statusHeight,
		boardHeight: h,
		white:       img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image),
		pending:     true,
	}
}

// Update runs at the check rate: it handles keys and polls the board.
func (g *game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.b.RequestButtonPress()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.toggleStatus()
	}

	if g.b.PollTick(g.opts.now()) {
		g.pending = true
	}
	return nil
}

// toggleStatus flips the status line. Only the status band is repainted;
// the board keeps its last frame and the POV buffer is not ticked.
func (g *game) toggleStatus() {
	if g.opts.Status == nil {
		return
	}
	g.showStatus = !g.showStatus
	g.statusDirty = true
}

// damage reports what the next Draw repaints and clears the flags.
func (g *game) damage() (board, status bool) {
	board = g.pending
	status = g.pending || g.statusDirty
	g.pending, g.statusDirty = false, false
	return board, status
}

// Draw renders a frame only when a redraw is pending; otherwise the previous
// frame stays on screen and the POV buffer is left alone.
func (g *game) Draw(screen *ebiten.Image) {
	board, status := g.damage()
	if board {
		g.drawBoard(screen)
	}
	if status {
		g.drawStatus(screen)
	}
}

func (g *game) drawBoard(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.vs = g.vs[:0]
	g.is = g.is[:0]
	f := g.b.RenderFrame(g.opts.now(), g.addQuad)
	if len(g.vs) > 0 {
		screen.DrawTriangles(g.vs, g.is, g.white, nil)
	}
	g.opts.frame(f)
}

func (g *game) drawStatus(screen *ebiten.Image) {
	band := screen.SubImage(image.Rect(0, g.height-statusHeight, g.width, g.height)).(*ebiten.Image)
	band.Fill(color.Black)
	if g.showStatus {
		text.Draw(screen, g.opts.Status(), basicfont.Face7x13, 2, g.height-4, colorStatus)
	}
}

// addQuad appends an LED outline. Board Y grows upwards, screen Y downwards.
func (g *game) addQuad(e topology.Entry) {
	c := colorCharlie
	if e.Kind == topology.Indicator {
		c = colorIndicator
	}
	r, gr, b, a := float32(c.R)/0xff, float32(c.G)/0xff, float32(c.B)/0xff, float32(c.A)/0xff

	base := uint16(len(g.vs))
	for _, p := range e.Quad() {
		g.vs = append(g.vs, ebiten.Vertex{
			DstX: p.X, DstY: g.boardHeight - p.Y,
			SrcX: 1, SrcY: 1,
			ColorR: r, ColorG: gr, ColorB: b, ColorA: a,
		})
	}
	g.is = append(g.is, base, base+1, base+2, base, base+2, base+3)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
