package core

import "testing"

func TestPointWrap(t *testing.T) {
	tests := []struct {
		name     string
		p        Point
		size     int
		expected Point
	}{
		{name: "inside unchanged", p: Point{X: 5, Y: 7}, size: 24, expected: Point{X: 5, Y: 7}},
		{name: "right edge", p: Point{X: 24, Y: 3}, size: 24, expected: Point{X: 0, Y: 3}},
		{name: "left edge", p: Point{X: -1, Y: 3}, size: 24, expected: Point{X: 23, Y: 3}},
		{name: "top edge", p: Point{X: 3, Y: -1}, size: 24, expected: Point{X: 3, Y: 23}},
		{name: "bottom edge", p: Point{X: 3, Y: 24}, size: 24, expected: Point{X: 3, Y: 0}},
		{name: "corner", p: Point{X: -1, Y: 24}, size: 24, expected: Point{X: 23, Y: 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.p.Wrap(tc.size)
			if got != tc.expected {
				t.Errorf("Wrap() = %v, expected %v", got, tc.expected)
			}
			if !got.In(tc.size) {
				t.Errorf("Wrap() produced out-of-range point %v", got)
			}
		})
	}
}

func TestPointAdd(t *testing.T) {
	p := Point{X: 23, Y: 10}
	next := p.Add(VecRight).Wrap(24)
	if next != (Point{X: 0, Y: 10}) {
		t.Errorf("moving right from x=23 should wrap to x=0, got %v", next)
	}

	up := Point{X: 4, Y: 0}.Add(VecUp).Wrap(24)
	if up != (Point{X: 4, Y: 23}) {
		t.Errorf("moving up from y=0 should wrap to y=23, got %v", up)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 10) != 5 {
		t.Error("Clamp(5, 0, 10) should be 5")
	}
	if Clamp(-5, 0, 10) != 0 {
		t.Error("Clamp(-5, 0, 10) should be 0")
	}
	if Clamp(15, 0, 10) != 10 {
		t.Error("Clamp(15, 0, 10) should be 10")
	}
	if ClampF(1.5, 0, 1) != 1 {
		t.Error("ClampF(1.5, 0, 1) should be 1")
	}
}
