// Package core provides the grid primitives shared by the game logic and the
// terminal renderer. It has no dependency on Bubble Tea so game logic stays
// pure and testable.
package core

// Point is a cell coordinate on the game grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the point translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.DX, Y: p.Y + v.DY}
}

// Wrap folds the point onto a size x size torus. Coordinates leaving one edge
// re-enter from the opposite edge.
func (p Point) Wrap(size int) Point {
	if size <= 0 {
		return p
	}
	return Point{X: mod(p.X, size), Y: mod(p.Y, size)}
}

// In reports whether the point lies inside a size x size grid.
func (p Point) In(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// Vector is a unit step on the grid.
type Vector struct {
	DX, DY int
}

// Direction vectors. Y grows downwards.
var (
	VecUp    = Vector{DX: 0, DY: -1}
	VecDown  = Vector{DX: 0, DY: 1}
	VecLeft  = Vector{DX: -1, DY: 0}
	VecRight = Vector{DX: 1, DY: 0}
)

// mod is the non-negative remainder of a / n.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
