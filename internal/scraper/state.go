package scraper

import (
	"github.com/cockroachdb/errors"
)

// SlotState is the position of one listing slot in its pipeline.
type SlotState string

const (
	SlotScraping       SlotState = "scraping"
	SlotDedupCheck     SlotState = "dedup_check"
	SlotExtracting     SlotState = "extracting"
	SlotSalaryFallback SlotState = "salary_fallback"
	SlotNormalizing    SlotState = "normalizing"
	SlotPersisting     SlotState = "persisting"
	SlotDone           SlotState = "done"
	SlotSkipped        SlotState = "skipped"
	SlotFailed         SlotState = "failed"
)

// Failed is reachable from every non-terminal state and is not listed.
var slotTransitions = map[SlotState][]SlotState{
	SlotScraping:       {SlotDedupCheck},
	SlotDedupCheck:     {SlotExtracting, SlotSkipped},
	SlotExtracting:     {SlotSalaryFallback, SlotNormalizing},
	SlotSalaryFallback: {SlotNormalizing},
	SlotNormalizing:    {SlotPersisting},
	SlotPersisting:     {SlotDone},
}

func (s SlotState) Terminal() bool {
	return s == SlotDone || s == SlotSkipped || s == SlotFailed
}

// RunState is the position of the whole run.
type RunState string

const (
	RunInit         RunState = "init"
	RunBrowserOpen  RunState = "browser_open"
	RunForEachSlot  RunState = "for_each_slot"
	RunBrowserClose RunState = "browser_close"
	RunSummaryFlush RunState = "summary_flush"
	RunComplete     RunState = "complete"
	RunAborted      RunState = "aborted"
)

var runTransitions = map[RunState][]RunState{
	RunInit:         {RunBrowserOpen, RunBrowserClose},
	RunBrowserOpen:  {RunForEachSlot, RunBrowserClose},
	RunForEachSlot:  {RunBrowserClose},
	RunBrowserClose: {RunSummaryFlush},
	RunSummaryFlush: {RunComplete, RunAborted},
}

var errIllegalTransition = errors.New("illegal state transition")

func allowed[S comparable](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// slotMachine tracks one slot. Any state may fail; every other move must be
// listed in slotTransitions.
type slotMachine struct {
	slot  int
	state SlotState
}

func newSlotMachine(slot int) *slotMachine {
	return &slotMachine{slot: slot, state: SlotScraping}
}

func (m *slotMachine) to(next SlotState) error {
	if m.state.Terminal() {
		return errors.Wrapf(errIllegalTransition, "slot %d: %s is terminal", m.slot, m.state)
	}
	if next != SlotFailed && !allowed(slotTransitions, m.state, next) {
		return errors.Wrapf(errIllegalTransition, "slot %d: %s -> %s", m.slot, m.state, next)
	}
	m.state = next
	return nil
}

func (m *slotMachine) fail() {
	m.state = SlotFailed
}

type runMachine struct {
	state RunState
}

func (m *runMachine) to(next RunState) error {
	if !allowed(runTransitions, m.state, next) {
		return errors.Wrapf(errIllegalTransition, "run: %s -> %s", m.state, next)
	}
	m.state = next
	return nil
}
