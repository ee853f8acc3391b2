package session

// InitialsLen is the number of letters in a high-score name
const InitialsLen = 3

// Initials edits a three-letter name from stick deflections.
// A new horizontal deflection moves the cursor; otherwise vertical deflection rotates the letter
type Initials struct {
	letters [InitialsLen]byte
	cursor  int
	prevDX  int
}

// NewInitials starts at "AAA" with the cursor on the first letter
func NewInitials() *Initials {
	return &Initials{letters: [InitialsLen]byte{'A', 'A', 'A'}}
}

// Step applies one sample's deflection
func (in *Initials) Step(dx, dy int) {
	dx /= 3
	switch {
	case dx > 0 && in.prevDX <= 0:
		if in.cursor < InitialsLen-1 {
			in.cursor++
		}
	case dx < 0 && in.prevDX >= 0:
		if in.cursor > 0 {
			in.cursor--
		}
	default:
		in.rotate(dy / 3)
	}
	in.prevDX = dx
}

func (in *Initials) rotate(delta int) {
	v := (int(in.letters[in.cursor]-'A') + delta) % 26
	if v < 0 {
		v += 26
	}
	in.letters[in.cursor] = byte('A' + v)
}

// Cursor returns the index being edited
func (in *Initials) Cursor() int { return in.cursor }

// String returns the current name
func (in *Initials) String() string { return string(in.letters[:]) }
