package domain

import (
	"fmt"
	"math"
	"sync"
)

type Color byte

const (
	Red = Color(iota)
	Blue
	Green
	Yellow
	Purple
)

const ColorCount = 5

var colorNames = [ColorCount]string{"red", "blue", "green", "yellow", "purple"}

func (c Color) String() string {
	if int(c) >= ColorCount {
		return fmt.Sprintf("color(%d)", c)
	}
	return colorNames[c]
}

type FieldKind byte

const (
	Corner = FieldKind(iota)
	Joint
	Connection
)

func (k FieldKind) String() string {
	switch k {
	case Corner:
		return "corner"
	case Joint:
		return "joint"
	default:
		return "connection"
	}
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Field is a node of the board graph. Fields are created by NewBoard and never
// change afterwards.
type Field struct {
	id        string
	altID     string
	kind      FieldKind
	color     Color
	pos       Point
	connected []*Field
}

func (f *Field) ID() string {
	return f.id
}

// AltID is the id of a connection field read from the opposite end, empty for
// corners and joints.
func (f *Field) AltID() string {
	return f.altID
}

func (f *Field) Kind() FieldKind {
	return f.kind
}

func (f *Field) Color() Color {
	return f.color
}

func (f *Field) Pos() Point {
	return f.pos
}

func (f *Field) Connected() []*Field {
	return f.connected
}

// IsGoalFor reports whether a player piece of the given color scores on f.
func (f *Field) IsGoalFor(c Color) bool {
	return f.kind == Corner && f.color == c
}

func (f *Field) String() string {
	return f.id
}

func (f *Field) connect(other *Field) {
	f.connected = append(f.connected, other)
	other.connected = append(other.connected, f)
}

const (
	outerRadius = 1.0
	// radius of the inner pentagon formed by the diagonals of the outer one
	innerRadius = outerRadius * 0.381966
	outerSteps  = 3
	innerSteps  = 3
	crossSteps  = 6
)

type Board struct {
	fields  []*Field
	lookup  map[string]*Field
	corners [ColorCount]*Field
	joints  [ColorCount]*Field
}

var (
	pentaBoard     *Board
	pentaBoardOnce sync.Once
)

// PentaBoard returns the board shared by every game. It must not be modified.
func PentaBoard() *Board {
	pentaBoardOnce.Do(func() {
		pentaBoard = NewBoard()
	})
	return pentaBoard
}

func NewBoard() *Board {
	b := &Board{lookup: make(map[string]*Field)}
	for i := 0; i < ColorCount; i++ {
		angle := float64(i) * -72 * math.Pi / 180
		b.corners[i] = &Field{
			id:    fmt.Sprintf("c%d", i),
			kind:  Corner,
			color: Color(i),
			pos:   Point{X: outerRadius * math.Cos(angle), Y: outerRadius * math.Sin(angle)},
		}
		b.joints[i] = &Field{
			id:    fmt.Sprintf("j%d", i),
			kind:  Joint,
			color: Color(i),
			pos:   Point{X: -innerRadius * math.Cos(angle), Y: -innerRadius * math.Sin(angle)},
		}
	}
	b.fields = append(b.fields, b.corners[:]...)
	b.fields = append(b.fields, b.joints[:]...)

	angle := 0.0
	for i, current := range b.corners {
		next := b.corners[(i+1)%ColorCount]
		nodes := make([]*Field, 0, outerSteps)
		for step := 0; step < outerSteps; step++ {
			angle -= 72.0 / (outerSteps + 1)
			rad := angle * math.Pi / 180
			nodes = append(nodes, newConnection(current, next, step, outerSteps,
				Point{X: outerRadius * math.Cos(rad), Y: outerRadius * math.Sin(rad)}))
		}
		angle -= 72.0 / (outerSteps + 1)
		b.chain(current, next, nodes)
	}
	for i, current := range b.joints {
		b.interpolate(current, b.joints[(i+1)%ColorCount], innerSteps)
	}
	for i, joint := range b.joints {
		b.interpolate(b.corners[(i+2)%ColorCount], joint, crossSteps)
		b.interpolate(b.corners[(i+3)%ColorCount], joint, crossSteps)
	}

	for _, f := range b.fields {
		b.lookup[f.id] = f
		if f.altID != "" {
			b.lookup[f.altID] = f
		}
	}
	return b
}

func newConnection(from, to *Field, step, steps int, pos Point) *Field {
	color := from.color
	if step >= steps/2+steps%2 {
		color = to.color
	}
	return &Field{
		id:    fmt.Sprintf("%s%s/%d", from.id, to.id, step+1),
		altID: fmt.Sprintf("%s%s/%d", to.id, from.id, steps-step),
		kind:  Connection,
		color: color,
		pos:   pos,
	}
}

func (b *Board) interpolate(from, to *Field, steps int) {
	nodes := make([]*Field, 0, steps)
	for step := 0; step < steps; step++ {
		t := float64(step+1) / float64(steps+1)
		pos := Point{
			X: from.pos.X + (to.pos.X-from.pos.X)*t,
			Y: from.pos.Y + (to.pos.Y-from.pos.Y)*t,
		}
		nodes = append(nodes, newConnection(from, to, step, steps, pos))
	}
	b.chain(from, to, nodes)
}

func (b *Board) chain(from, to *Field, nodes []*Field) {
	prev := from
	for _, node := range nodes {
		prev.connect(node)
		prev = node
	}
	prev.connect(to)
	b.fields = append(b.fields, nodes...)
}

// Field resolves both the id and the alternative id of a field.
func (b *Board) Field(id string) (*Field, bool) {
	f, ok := b.lookup[id]
	return f, ok
}

func (b *Board) Fields() []*Field {
	return b.fields
}

func (b *Board) Corner(c Color) *Field {
	return b.corners[c]
}

func (b *Board) Joint(c Color) *Field {
	return b.joints[c]
}
