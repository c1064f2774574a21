package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty          = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgs           = errors.New("bad arguments")
)

type CommandDef struct {
	Canonical string
	Aliases   []string
	MinArgs   int
	MaxArgs   int
	Usage     string
}

// Command is one parsed input line.
type Command struct {
	Raw   string
	Verb  string
	Args  []string
	Score float64
	// exact, alias, prefix or lev.
	Source string
}

// AmbiguousError is returned when two commands match about equally well.
type AmbiguousError struct {
	Input   string
	Options []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q is ambiguous: %s", e.Input, strings.Join(e.Options, " or "))
}
