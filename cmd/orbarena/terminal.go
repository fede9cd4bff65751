package main

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/orbarena/arena/internal/session"
	"github.com/orbarena/arena/internal/world"
)

const (
	// World units covered by one terminal cell. Cells are about twice as
	// tall as they are wide.
	unitsPerCol = 6.0
	unitsPerRow = 12.0

	// Terminals report key presses, never releases: a direction stays held
	// until no repeat has arrived for this long.
	keyHold = 180 * time.Millisecond
)

var (
	_ session.InputProvider = (*terminal)(nil)
	_ session.Renderer      = (*terminal)(nil)
)

type heldKey int

const (
	keyUp heldKey = iota
	keyDown
	keyLeft
	keyRight
	keyBoost
	numKeys
)

// terminal is the interactive front-end: a tcell screen that turns key
// presses into Input and draws each snapshot around the player.
type terminal struct {
	screen  tcell.Screen
	maxFuel float64

	mu      sync.Mutex
	pressed [numKeys]time.Time
	over    bool

	quit     chan struct{}
	quitOnce sync.Once
	restart  chan struct{}
}

func newTerminal(maxFuel float64) (*terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.HideCursor()
	screen.Clear()

	t := &terminal{
		screen:  screen,
		maxFuel: maxFuel,
		quit:    make(chan struct{}),
		restart: make(chan struct{}, 1),
	}
	go t.pollEvents()
	return t, nil
}

func (t *terminal) Quit() <-chan struct{}    { return t.quit }
func (t *terminal) Restart() <-chan struct{} { return t.restart }

func (t *terminal) Close() {
	t.screen.Fini()
}

func (t *terminal) pollEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			// screen finalized
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			t.handleKey(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *terminal) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quitOnce.Do(func() { close(t.quit) })
		return
	case tcell.KeyUp:
		t.press(keyUp)
	case tcell.KeyDown:
		t.press(keyDown)
	case tcell.KeyLeft:
		t.press(keyLeft)
	case tcell.KeyRight:
		t.press(keyRight)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			t.press(keyUp)
		case 's', 'S':
			t.press(keyDown)
		case 'a', 'A':
			t.press(keyLeft)
		case 'd', 'D':
			t.press(keyRight)
		case ' ':
			t.press(keyBoost)
		case 'q', 'Q':
			t.quitOnce.Do(func() { close(t.quit) })
		case 'r', 'R':
			t.mu.Lock()
			over := t.over
			t.mu.Unlock()
			if over {
				select {
				case t.restart <- struct{}{}:
				default:
				}
			}
		}
	}
	if ev.Modifiers()&tcell.ModShift != 0 {
		t.press(keyBoost)
	}
}

func (t *terminal) press(k heldKey) {
	t.mu.Lock()
	t.pressed[k] = time.Now()
	t.mu.Unlock()
}

// Input reports every key pressed within the hold window.
func (t *terminal) Input() world.Input {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	held := func(k heldKey) bool {
		return !t.pressed[k].IsZero() && now.Sub(t.pressed[k]) < keyHold
	}
	return world.Input{
		Up:    held(keyUp),
		Down:  held(keyDown),
		Left:  held(keyLeft),
		Right: held(keyRight),
		Boost: held(keyBoost),
	}
}

func (t *terminal) Render(snap *world.Snapshot) {
	t.mu.Lock()
	t.over = snap.Outcome.Terminal() || !snap.Running
	t.mu.Unlock()

	s := t.screen
	s.Clear()
	w, h := s.Size()

	// Camera follows the player, or the arena centre once it is gone.
	camX, camY := snap.WorldSize/2, snap.WorldSize/2
	if p, ok := snap.PlayerView(); ok {
		camX, camY = p.X, p.Y
	}
	originX := camX - float64(w)/2*unitsPerCol
	originY := camY - float64(h)/2*unitsPerRow
	toCell := func(x, y float64) (int, int) {
		return int(math.Floor((x - originX) / unitsPerCol)), int(math.Floor((y - originY) / unitsPerRow))
	}

	t.drawBorder(snap.WorldSize, originX, originY, w, h)

	for _, pk := range snap.Pickups {
		cx, cy := toCell(pk.X, pk.Y)
		t.set(cx, cy, '*', styleOf(pk.Color), w, h)
	}
	for _, o := range snap.Orbs {
		tailStyle := styleOf(o.Color.WithLightness(o.Color.L * 0.6))
		for _, pt := range o.Tail {
			cx, cy := toCell(pt.X, pt.Y)
			t.set(cx, cy, '·', tailStyle, w, h)
		}
	}
	for _, pt := range snap.Particles {
		if pt.MaxLife <= 0 {
			continue
		}
		cx, cy := toCell(pt.X, pt.Y)
		c := pt.Color.WithLightness(pt.Color.L * pt.Life / pt.MaxLife)
		t.set(cx, cy, '.', styleOf(c), w, h)
	}
	for i, o := range snap.Orbs {
		glyph := '●'
		if i == snap.Player {
			glyph = '◉'
		}
		t.drawDisc(o, toCell, glyph, w, h)
	}

	t.drawHUD(snap, w, h)
	s.Show()
}

func (t *terminal) drawBorder(size, originX, originY float64, w, h int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	left := int(math.Floor(-originX / unitsPerCol))
	right := int(math.Floor((size - originX) / unitsPerCol))
	top := int(math.Floor(-originY / unitsPerRow))
	bottom := int(math.Floor((size - originY) / unitsPerRow))
	for x := left; x <= right; x++ {
		t.set(x, top, '─', style, w, h)
		t.set(x, bottom, '─', style, w, h)
	}
	for y := top; y <= bottom; y++ {
		t.set(left, y, '│', style, w, h)
		t.set(right, y, '│', style, w, h)
	}
}

func (t *terminal) drawDisc(o world.OrbView, toCell func(x, y float64) (int, int), glyph rune, w, h int) {
	style := styleOf(o.Color)
	x0, y0 := toCell(o.X-o.Radius, o.Y-o.Radius)
	x1, y1 := toCell(o.X+o.Radius, o.Y+o.Radius)
	r2 := o.Radius * o.Radius
	cx, cy := toCell(o.X, o.Y)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx := float64(x-cx) * unitsPerCol
			dy := float64(y-cy) * unitsPerRow
			if dx*dx+dy*dy <= r2 {
				t.set(x, y, '█', style, w, h)
			}
		}
	}
	t.set(cx, cy, glyph, style.Reverse(true), w, h)
}

func (t *terminal) drawHUD(snap *world.Snapshot, w, h int) {
	hud := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
	for x := 0; x < w; x++ {
		t.set(x, 0, ' ', hud, w, h)
	}

	const barWidth = 20
	filled := 0
	if t.maxFuel > 0 {
		filled = int(math.Round(snap.Fuel / t.maxFuel * barWidth))
	}
	filled = max(0, min(filled, barWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	line := fmt.Sprintf(" score %d   level %d   fuel %s %3.0f   rank %d/%d   tick %d",
		snap.Score, snap.Level, bar, snap.Fuel, snap.PlayerRank, len(snap.Orbs), snap.Tick)
	t.text(0, 0, line, hud, w, h)

	help := " arrows/wasd move   space boost   q quit"
	if !snap.Running {
		help = " r play again   q quit"
	}
	t.text(0, h-1, help, tcell.StyleDefault.Foreground(tcell.ColorGray), w, h)

	if len(snap.Leaderboard) > 0 {
		y := 2
		t.text(w-18, y, "largest", hud, w, h)
		for i, e := range snap.Leaderboard {
			name := "ai"
			if e.Player {
				name = "you"
			}
			t.text(w-18, y+1+i, fmt.Sprintf("%d. %-4s %6.1f", i+1, name, e.Radius), tcell.StyleDefault, w, h)
		}
	}

	var banner string
	switch snap.Outcome {
	case world.OutcomeWon:
		banner = "  YOU ARE THE LAST ORB  "
	case world.OutcomeLost:
		banner = "  ABSORBED  "
	default:
		return
	}
	style := tcell.StyleDefault.Bold(true).Reverse(true)
	t.text((w-len([]rune(banner)))/2, h/2, banner, style, w, h)
}

func (t *terminal) text(x, y int, s string, style tcell.Style, w, h int) {
	for _, r := range s {
		t.set(x, y, r, style, w, h)
		x++
	}
}

func (t *terminal) set(x, y int, r rune, style tcell.Style, w, h int) {
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	t.screen.SetContent(x, y, r, nil, style)
}

func styleOf(c world.Color) tcell.Style {
	r, g, b := c.Colorful().Clamped().RGB255()
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}
