package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type commandPhrase struct {
	canonical string
	alias     string
	tokens    []string
}

type Registry struct {
	commands map[string]CommandDef
	phrases  []commandPhrase
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]CommandDef)}
}

func (r *Registry) RegisterCommand(c CommandDef) {
	c.Canonical = normaliseInput(c.Canonical)
	if c.Canonical == "" {
		return
	}
	r.commands[c.Canonical] = c

	r.phrases = append(r.phrases, commandPhrase{
		canonical: c.Canonical,
		alias:     c.Canonical,
		tokens:    tokenise(c.Canonical),
	})
	for _, a := range c.Aliases {
		n := normaliseInput(a)
		if n == "" {
			continue
		}
		r.phrases = append(r.phrases, commandPhrase{
			canonical: c.Canonical,
			alias:     n,
			tokens:    tokenise(n),
		})
	}
}

func (r *Registry) command(canonical string) (CommandDef, bool) {
	cmd, ok := r.commands[normaliseInput(canonical)]
	return cmd, ok
}

// Commands lists the registered commands sorted by name.
func (r *Registry) Commands() []CommandDef {
	out := make([]CommandDef, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

type commandCandidate struct {
	Canonical string
	Consumed  int
	Score     float64
	Source    string
}

func (r *Registry) matchCommand(tokens []string) (commandCandidate, []commandCandidate) {
	if len(tokens) == 0 {
		return commandCandidate{}, nil
	}
	cands := make([]commandCandidate, 0, len(r.phrases))
	for _, phrase := range r.phrases {
		if len(phrase.tokens) == 0 {
			continue
		}
		consumed := min(len(tokens), len(phrase.tokens))
		prefix := strings.Join(tokens[:consumed], " ")

		if consumed == len(phrase.tokens) && prefix == phrase.alias {
			score, source := 1.0, "exact"
			if phrase.alias != phrase.canonical {
				score, source = 0.97, "alias"
			}
			cands = append(cands, commandCandidate{Canonical: phrase.canonical, Consumed: consumed, Score: score, Source: source})
			continue
		}

		if len(phrase.tokens) == 1 && len(tokens[0]) >= 2 && strings.HasPrefix(phrase.alias, tokens[0]) {
			cands = append(cands, commandCandidate{Canonical: phrase.canonical, Consumed: 1, Score: 0.9, Source: "prefix"})
			continue
		}

		if len(tokens) < len(phrase.tokens) {
			continue
		}
		compare := strings.Join(tokens[:len(phrase.tokens)], " ")
		if len(compare) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(compare, phrase.alias)
		if dist > levenshteinLimit(len(phrase.alias)) {
			continue
		}
		score := 0.72 - (0.08 * float64(dist))
		if phrase.alias != phrase.canonical {
			score += 0.03
		}
		cands = append(cands, commandCandidate{Canonical: phrase.canonical, Consumed: len(phrase.tokens), Score: score, Source: "lev"})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			if cands[i].Consumed == cands[j].Consumed {
				return cands[i].Canonical < cands[j].Canonical
			}
			return cands[i].Consumed > cands[j].Consumed
		}
		return cands[i].Score > cands[j].Score
	})

	if len(cands) == 0 {
		return commandCandidate{}, nil
	}
	best := cands[0]
	alts := make([]commandCandidate, 0, 4)
	seen := map[string]bool{best.Canonical: true}
	for _, c := range cands[1:] {
		if seen[c.Canonical] {
			continue
		}
		seen[c.Canonical] = true
		alts = append(alts, c)
		if len(alts) >= 4 {
			break
		}
	}
	return best, alts
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Canonical: "north", Aliases: []string{"n", "up"}, MaxArgs: 1, Usage: "north [tiles]"},
		{Canonical: "south", Aliases: []string{"s", "down"}, MaxArgs: 1, Usage: "south [tiles]"},
		{Canonical: "east", Aliases: []string{"e", "right"}, MaxArgs: 1, Usage: "east [tiles]"},
		{Canonical: "west", Aliases: []string{"w", "left"}, MaxArgs: 1, Usage: "west [tiles]"},
		{Canonical: "move", Aliases: []string{"go to", "goto", "move to", "teleport"}, MinArgs: 2, MaxArgs: 2, Usage: "move <lat> <lng>"},
		{Canonical: "geolocate", Aliases: []string{"gps", "position"}, MinArgs: 2, MaxArgs: 2, Usage: "geolocate <lat> <lng>"},
		{Canonical: "track", Aliases: []string{"tracking", "follow"}, MinArgs: 1, MaxArgs: 1, Usage: "track on|off"},
		{Canonical: "collect", Aliases: []string{"take", "grab", "pick up", "pickup"}, MinArgs: 1, MaxArgs: 2, Usage: "collect <i,j>"},
		{Canonical: "deposit", Aliases: []string{"drop", "put", "give"}, MinArgs: 1, MaxArgs: 2, Usage: "deposit <i,j>"},
		{Canonical: "locate", Aliases: []string{"find", "where is"}, MinArgs: 1, MaxArgs: 1, Usage: "locate <coin id>"},
		{Canonical: "reset", Aliases: []string{"restart", "start over"}, Usage: "reset"},
		{Canonical: "look", Aliases: []string{"l", "look around", "map"}, Usage: "look"},
		{Canonical: "inventory", Aliases: []string{"inv", "i", "coins", "bag"}, Usage: "inventory"},
		{Canonical: "help", Aliases: []string{"h", "?", "commands"}, Usage: "help"},
		{Canonical: "quit", Aliases: []string{"q", "exit", "bye"}, Usage: "quit"},
	}
	for _, cmd := range commands {
		r.RegisterCommand(cmd)
	}
	return r
}
