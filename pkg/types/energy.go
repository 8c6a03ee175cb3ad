package types

import "fmt"

// Joules is a float64 wrapper representing an energy amount in Joules.
type Joules float64

func (j Joules) String() string { return fmt.Sprintf("%.3f J", float64(j)) }

// Milli returns the amount in millijoules.
func (j Joules) Milli() float64 { return float64(j) * 1e3 }

// Watts is a float64 wrapper representing a power draw in Watts.
type Watts float64

func (w Watts) String() string { return fmt.Sprintf("%.3f W", float64(w)) }

// Milli returns the draw in milliwatts.
func (w Watts) Milli() float64 { return float64(w) * 1e3 }
