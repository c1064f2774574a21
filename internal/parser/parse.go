package parser

import "fmt"

type Parser struct {
	registry *Registry
}

func New() *Parser {
	return &Parser{registry: DefaultRegistry()}
}

func (p *Parser) Registry() *Registry { return p.registry }

// Parse maps one input line to a command. Verbs match exactly, by alias, by
// unambiguous prefix, or within a small edit distance.
func (p *Parser) Parse(raw string) (Command, error) {
	norm := normaliseInput(raw)
	if norm == "" {
		return Command{}, ErrEmpty
	}
	tokens := tokenise(norm)

	best, alts := p.registry.matchCommand(tokens)
	if best.Canonical == "" || best.Score < 0.5 {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, tokens[0])
	}
	if len(alts) > 0 && best.Score-alts[0].Score < 0.05 && alts[0].Score > 0.65 {
		return Command{}, &AmbiguousError{Input: tokens[0], Options: []string{best.Canonical, alts[0].Canonical}}
	}

	cmd := Command{
		Raw:    raw,
		Verb:   best.Canonical,
		Args:   tokens[best.Consumed:],
		Score:  best.Score,
		Source: best.Source,
	}
	def, _ := p.registry.command(cmd.Verb)
	if len(cmd.Args) < def.MinArgs || len(cmd.Args) > def.MaxArgs {
		return cmd, fmt.Errorf("%w: usage: %s", ErrArgs, def.Usage)
	}
	return cmd, nil
}
