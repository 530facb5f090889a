// Package travelmap implements the immutable pairwise distance/time
// lookup fixed by spec.md §4.1: constructed once from route records,
// never mutated, with symmetric fallback lookup.
package travelmap

import (
	"fmt"
	"math"
)

// Record is one input route: a directed (or effectively bidirectional)
// edge with its distance and travel time.
type Record struct {
	Start    string
	End      string
	Distance float64 // km
	Time     int64   // seconds
}

type entry struct {
	distance float64
	time     int64
}

type pairKey struct{ a, b string }

// Map is an immutable (from,to) -> (distance,time) lookup table.
type Map struct {
	entries map[pairKey]entry
}

// New builds a Map from a list of route records. Later records for the
// same (start,end) pair overwrite earlier ones.
func New(records []Record) *Map {
	m := &Map{entries: make(map[pairKey]entry, len(records))}
	for _, r := range records {
		m.entries[pairKey{r.Start, r.End}] = entry{r.Distance, r.Time}
	}
	return m
}

// ErrUnknownPair is returned (and wrapped with the pair) when neither
// the forward nor swapped endpoints are in the map.
type ErrUnknownPair struct {
	From, To string
}

func (e *ErrUnknownPair) Error() string {
	return fmt.Sprintf("travelmap: unknown pair (%s, %s)", e.From, e.To)
}

// SentinelDistance and SentinelTime are the "infinite" values returned
// alongside ErrUnknownPair.
const SentinelTime = int64(math.MaxInt64 / 2)

var SentinelDistance = math.Inf(1)

func (m *Map) lookup(a, b string) (entry, bool) {
	if a == b {
		return entry{0, 0}, true
	}
	if e, ok := m.entries[pairKey{a, b}]; ok {
		return e, true
	}
	if e, ok := m.entries[pairKey{b, a}]; ok {
		return e, true
	}
	return entry{}, false
}

// Distance returns the precomputed distance between a and b, trying the
// forward pair then the swapped pair, per spec.md §4.1.
func (m *Map) Distance(a, b string) (float64, error) {
	e, ok := m.lookup(a, b)
	if !ok {
		return SentinelDistance, &ErrUnknownPair{From: a, To: b}
	}
	return e.distance, nil
}

// Time returns the precomputed travel time between a and b in seconds.
func (m *Map) Time(a, b string) (int64, error) {
	e, ok := m.lookup(a, b)
	if !ok {
		return SentinelTime, &ErrUnknownPair{From: a, To: b}
	}
	return e.time, nil
}
