package main

import "geocoin.ai/internal/sim/world"

type kindCount struct {
	Kind   string `json:"kind"`
	OK     int    `json:"ok"`
	Failed int    `json:"failed"`
}

type eventSummary struct {
	Files    int         `json:"files"`
	Entries  int         `json:"entries"`
	FirstSeq uint64      `json:"first_seq"`
	LastSeq  uint64      `json:"last_seq"`
	Gaps     int         `json:"gaps"`
	Kinds    []kindCount `json:"kinds"`
	Net      int         `json:"net_collected"`

	ok     map[string]int
	failed map[string]int
}

func newEventSummary() *eventSummary {
	return &eventSummary{ok: map[string]int{}, failed: map[string]int{}}
}

// add folds entries in. A gap is counted whenever seq does not follow the
// previous entry; a restarted session starts over at 1 and counts as one.
func (s *eventSummary) add(entries []world.EventEntry) {
	for _, e := range entries {
		if s.Entries == 0 {
			s.FirstSeq = e.Seq
		} else if e.Seq != s.LastSeq+1 {
			s.Gaps++
		}
		s.LastSeq = e.Seq
		s.Entries++
		if e.OK {
			s.ok[e.Kind]++
			s.Net += e.Amount
		} else {
			s.failed[e.Kind]++
		}
	}
	seen := map[string]int{}
	for k, n := range s.ok {
		seen[k] += n
	}
	for k, n := range s.failed {
		seen[k] += n
	}
	s.Kinds = s.Kinds[:0]
	for _, k := range sortedKeys(seen) {
		s.Kinds = append(s.Kinds, kindCount{Kind: k, OK: s.ok[k], Failed: s.failed[k]})
	}
}
