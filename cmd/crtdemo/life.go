package main

import (
	"math/rand/v2"

	"github.com/gdamore/tcell/v2"
)

// life is a toroidal game of life board. Ages count how many generations
// a cell has been alive and pick its color.
type life struct {
	w, h   int
	age    []int
	next   []int
	focusX int
	focusY int
}

// ageColors tints young cells bright and old cells dim.
var ageColors = []tcell.Color{
	tcell.PaletteColor(15),
	tcell.PaletteColor(14),
	tcell.PaletteColor(6),
	tcell.PaletteColor(30),
	tcell.PaletteColor(23),
}

func newLife(w, h int, rng *rand.Rand) *life {
	l := &life{w: w, h: h, age: make([]int, w*h), next: make([]int, w*h)}
	for i := range l.age {
		if rng.IntN(4) == 0 {
			l.age[i] = 1
		}
	}
	return l
}

func (l *life) alive(x, y int) bool {
	x = (x + l.w) % l.w
	y = (y + l.h) % l.h
	return l.age[y*l.w+x] > 0
}

func (l *life) step() {
	for y := range l.h {
		for x := range l.w {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if (dx != 0 || dy != 0) && l.alive(x+dx, y+dy) {
						n++
					}
				}
			}
			i := y*l.w + x
			switch {
			case l.age[i] > 0 && (n == 2 || n == 3):
				l.next[i] = l.age[i] + 1
			case l.age[i] == 0 && n == 3:
				l.next[i] = 1
			default:
				l.next[i] = 0
			}
		}
	}
	l.age, l.next = l.next, l.age
}

// draw paints the board into cb and moves the focus to the youngest cell.
func (l *life) draw(cb *tcell.CellBuffer) {
	youngest := 0
	l.focusX, l.focusY = 0, 0
	for y := range l.h {
		for x := range l.w {
			a := l.age[y*l.w+x]
			if a == 0 {
				cb.SetContent(x, y, ' ', nil, tcell.StyleDefault)
				continue
			}
			c := ageColors[min(a-1, len(ageColors)-1)]
			cb.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(c))
			if youngest == 0 || a < youngest {
				youngest = a
				l.focusX, l.focusY = x, y
			}
		}
	}
}
