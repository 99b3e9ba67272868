package tracker

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ModelOrder selects the kinematic order of the motion model
type ModelOrder int

const (
	// ConstantVelocity tracks {x, y, vx, vy}
	ConstantVelocity ModelOrder = 1
	// ConstantAcceleration tracks {x, y, vx, vy, ax, ay}
	ConstantAcceleration ModelOrder = 2
)

// dt is the time step of one tick.  The filter runs in tick units so
// velocities are pixels per tick
const dt = 1.0

// StateSize returns the length of the state vector for the model order
func (o ModelOrder) StateSize() int {
	if o == ConstantAcceleration {
		return 6
	}
	return 4
}

// String returns the config name of the model order
func (o ModelOrder) String() string {
	switch o {
	case ConstantVelocity:
		return "velocity"
	case ConstantAcceleration:
		return "acceleration"
	}
	return fmt.Sprintf("ModelOrder(%d)", int(o))
}

// ParseModelOrder converts a config name into a ModelOrder
func ParseModelOrder(s string) (ModelOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "velocity", "cv", "2":
		return ConstantVelocity, nil
	case "acceleration", "ca", "3":
		return ConstantAcceleration, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, s)
}

// MarshalText implements encoding.TextMarshaler
func (o ModelOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *ModelOrder) UnmarshalText(b []byte) error {
	v, err := ParseModelOrder(string(b))

	if err != nil {
		return err
	}

	*o = v
	return nil
}

// TransitionMatrix returns the state transition matrix for a single time
// step of the given model order.  Position advances by velocity and, for the
// acceleration model, half the acceleration.  Velocity advances by
// acceleration
func TransitionMatrix(order ModelOrder) *mat.Dense {

	n := order.StateSize()

	// start from identity so every state carries over unchanged
	f := mat.NewDense(n, n, nil)

	for i := 0; i < n; i++ {
		f.Set(i, i, 1.0)
	}

	// x += vx, y += vy
	for i := 0; i < 2; i++ {
		f.Set(i, 2+i, dt)
	}

	if order == ConstantAcceleration {
		for i := 0; i < 2; i++ {
			// x += 0.5*ax, y += 0.5*ay
			f.Set(i, 4+i, 0.5*dt*dt)
			// vx += ax, vy += ay
			f.Set(2+i, 4+i, dt)
		}
	}

	return f
}

// MeasurementMatrix returns the 2xN matrix selecting the position
// components out of the state vector
func MeasurementMatrix(order ModelOrder) *mat.Dense {

	h := mat.NewDense(2, order.StateSize(), nil)

	for i := 0; i < 2; i++ {
		h.Set(i, i, 1.0)
	}

	return h
}
