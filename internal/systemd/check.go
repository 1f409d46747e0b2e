package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
)

// UnitState is the health of one watched unit
type UnitState struct {
	Name        string `json:"name"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
}

// Checker verifies that watched systemd units are active
type Checker struct {
	units []string
}

// NewChecker creates a checker for the given unit names. Names may omit
// the .service suffix.
func NewChecker(units []string) *Checker {
	return &Checker{units: units}
}

// Check queries each watched unit and returns its state. The returned
// error is non-nil when any unit is not active, naming every inactive
// unit.
func (c *Checker) Check(ctx context.Context) ([]UnitState, error) {
	conn, err := dbus.NewWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	defer conn.Close()

	var states []UnitState
	var inactive []string

	for _, name := range c.units {
		unitName := name
		if !strings.HasSuffix(unitName, ".service") {
			unitName = name + ".service"
		}

		props, err := conn.GetUnitPropertiesContext(ctx, unitName)
		if err != nil {
			return states, fmt.Errorf("failed to get properties for %s: %w", unitName, err)
		}

		state := UnitState{Name: name}
		if active, ok := props["ActiveState"].(string); ok {
			state.ActiveState = active
		}
		if sub, ok := props["SubState"].(string); ok {
			state.SubState = sub
		}
		states = append(states, state)

		if state.ActiveState != "active" {
			inactive = append(inactive, fmt.Sprintf("%s (%s)", name, state.ActiveState))
		}
	}

	if len(inactive) > 0 {
		return states, fmt.Errorf("units not active: %s", strings.Join(inactive, ", "))
	}

	return states, nil
}
