package cube

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// PowerUp is the effect a cube grants when hit
type PowerUp uint8

const (
	None PowerUp = iota
	Life
	AimAssist
	SpeedUp
	Freeze
	SlowDown
	powerUpCount
)

var powerUpNames = [powerUpCount]string{"none", "life", "aim", "speed", "freeze", "slow"}

func (p PowerUp) String() string {
	if p < powerUpCount {
		return powerUpNames[p]
	}
	return fmt.Sprintf("powerup(%d)", p)
}

// ParsePowerUp maps a configuration name to a kind
func ParsePowerUp(name string) (PowerUp, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, known := range powerUpNames {
		if n == known {
			return PowerUp(i), nil
		}
	}
	return None, fmt.Errorf("unknown power-up %q", name)
}

// CostsLife reports whether expiring this cube takes a life
// SlowDown cubes are disguised hazards: free to miss, harmful to hit
func (p PowerUp) CostsLife() bool {
	return p != SlowDown
}

// Color returns the display color of a cube carrying this power-up
func (p PowerUp) Color() tcell.Color {
	switch p {
	case Life:
		return tcell.ColorRed
	case AimAssist:
		return tcell.ColorGreen
	case SpeedUp:
		return tcell.ColorYellow
	case Freeze:
		return tcell.ColorAqua
	case SlowDown:
		return tcell.ColorGray
	default:
		return tcell.ColorBlue
	}
}
