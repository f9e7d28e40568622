package sample

import (
	"fmt"
	"strings"
)

// Greeter greets people.
type Greeter struct {
	Prefix string
}

// Greet returns a greeting for name.
func (g *Greeter) Greet(name string) string {
	return fmt.Sprintf("%s, %s!", g.Prefix, strings.TrimSpace(name))
}

// NewGreeter builds a Greeter with the default prefix.
func NewGreeter() *Greeter {
	return &Greeter{Prefix: "hello"}
}
