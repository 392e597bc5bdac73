package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-job-extractor/internal/browser"
	"go-job-extractor/internal/canon"
	"go-job-extractor/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFatal marks errors that abort the whole run.
var ErrFatal = errors.New("fatal scrape error")

type Options struct {
	SearchURL string
	// Source is stamped on every saved record.
	Source  string
	MaxJobs int
	// Delay is the pause between two consecutive slots.
	Delay time.Duration
}

// Orchestrator runs one scrape pass: open the search page, walk up to MaxJobs
// cards one at a time, and persist a record for every new listing.
type Orchestrator struct {
	session   Session
	extractor Extractor
	store     Store
	mirror    Mirror
	notifier  Notifier
	opts      Options
	log       *zap.SugaredLogger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
	run   runMachine
}

func NewOrchestrator(session Session, extractor Extractor, store Store, opts Options, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		session:   session,
		extractor: extractor,
		store:     store,
		opts:      opts,
		log:       log,
		now:       time.Now,
		sleep:     browser.Sleep,
		run:       runMachine{state: RunInit},
	}
}

// WithMirror copies every saved record to m.
func (o *Orchestrator) WithMirror(m Mirror) *Orchestrator {
	o.mirror = m
	return o
}

// WithNotifier sends the final summary to n.
func (o *Orchestrator) WithNotifier(n Notifier) *Orchestrator {
	o.notifier = n
	return o
}

// State reports the current run state.
func (o *Orchestrator) State() RunState {
	return o.run.state
}

// Run executes the pass. The summary is always returned and always flushed
// to the store. The error is non-nil only when the run was aborted (marked
// with ErrFatal) or the summary could not be written.
func (o *Orchestrator) Run(ctx context.Context) (models.SessionSummary, error) {
	tracker := NewSessionTracker(uuid.NewString(), o.now)
	o.log.Info("🚀 Starting job scraper")

	var fatal error
	opened := false

	if _, err := o.store.Load(); err != nil {
		fatal = errors.Mark(errors.Wrap(err, "load existing jobs"), ErrFatal)
	}

	if fatal == nil {
		o.advanceRun(RunBrowserOpen)
		opened = true
		fatal = o.openAndProcess(ctx, tracker)
	}

	o.advanceRun(RunBrowserClose)
	if opened {
		if err := o.session.Close(); err != nil {
			o.log.Warnf("⚠️ Failed to close browser: %v", err)
		}
	}

	o.advanceRun(RunSummaryFlush)
	status := models.RunComplete
	if fatal != nil {
		o.log.Errorf("❌ Fatal error during scraping: %v", fatal)
		tracker.RecordFatal(fatal)
		status = models.RunAborted
	}
	summary := tracker.Finish(status)

	path, flushErr := o.store.SaveSessionSummary(summary)
	if flushErr != nil {
		o.log.Errorf("❌ Failed to save session summary: %v", flushErr)
	} else {
		o.log.Infof("💾 Session summary saved: %s", path)
	}

	if status == models.RunComplete {
		o.advanceRun(RunComplete)
	} else {
		o.advanceRun(RunAborted)
	}

	o.notify(summary)
	o.printSummary(summary)

	if fatal != nil {
		return summary, fatal
	}
	if flushErr != nil {
		return summary, errors.Wrap(flushErr, "flush session summary")
	}
	return summary, nil
}

// openAndProcess covers BrowserOpen and ForEachSlot. The returned error is
// always fatal.
func (o *Orchestrator) openAndProcess(ctx context.Context, tracker *SessionTracker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Mark(errors.Newf("run panicked: %v", r), ErrFatal)
		}
	}()

	o.log.Info("🌐 Launching browser...")
	if err := o.session.Open(ctx, o.opts.SearchURL); err != nil {
		return errors.Mark(errors.Wrap(err, "open search page"), ErrFatal)
	}

	cards, err := o.session.ListCards(ctx)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "list job cards"), ErrFatal)
	}

	total := min(o.opts.MaxJobs, len(cards))
	o.log.Infof("🎯 Will scrape %d of %d jobs", total, len(cards))

	o.advanceRun(RunForEachSlot)
	for i := 0; i < total; i++ {
		if i > 0 {
			if err := o.sleep(ctx, o.opts.Delay); err != nil {
				return errors.Mark(errors.Wrap(err, "run interrupted"), ErrFatal)
			}
		}
		if err := ctx.Err(); err != nil {
			return errors.Mark(errors.Wrap(err, "run interrupted"), ErrFatal)
		}

		slot := i + 1
		o.log.Infof("📦 Processing job %d/%d", slot, total)
		tracker.BeginSlot()

		state, err := o.processSlot(ctx, slot, cards[i])
		switch state {
		case SlotDone:
			tracker.RecordSuccess()
			o.log.Infof("✅ Job %d complete!", slot)
		case SlotSkipped:
			tracker.RecordSkipped()
			o.log.Infof("⏭️ Job %d already exists, skipping", slot)
		default:
			if err == nil {
				err = errors.Newf("slot ended in state %s", state)
			}
			tracker.RecordFailure(slot, err)
			o.log.Errorf("❌ Failed to process job %d: %v", slot, err)
		}
	}
	return nil
}

// processSlot walks one card through the slot states. Errors and panics
// stop at this boundary.
func (o *Orchestrator) processSlot(ctx context.Context, slot int, card browser.Card) (state SlotState, err error) {
	m := newSlotMachine(slot)
	defer func() {
		if r := recover(); r != nil {
			m.fail()
			state, err = SlotFailed, errors.Newf("slot %d panicked: %v", slot, r)
		}
	}()

	fail := func(err error) (SlotState, error) {
		m.fail()
		return SlotFailed, err
	}

	// Scraping
	if err := o.session.OpenDetail(ctx, card, slot); err != nil {
		return fail(err)
	}
	material, err := o.session.CaptureMaterial(ctx, card)
	if err != nil {
		return fail(errors.Wrapf(err, "slot %d: capture listing", slot))
	}
	if strings.TrimSpace(material.Link) == "" {
		return fail(errors.Newf("slot %d: no link captured", slot))
	}

	if err := m.to(SlotDedupCheck); err != nil {
		return fail(err)
	}
	if o.store.Exists(material.Link) {
		if err := m.to(SlotSkipped); err != nil {
			return fail(err)
		}
		return SlotSkipped, nil
	}

	if err := m.to(SlotExtracting); err != nil {
		return fail(err)
	}
	o.log.Info("🤖 Extracting job details with AI...")
	candidate := o.extractor.ExtractFromHTML(ctx, material.HTML, material.FallbackSalary)
	// cancelled calls degrade the candidate; such records are never persisted
	if err := ctx.Err(); err != nil {
		return fail(errors.Wrapf(err, "slot %d: extraction interrupted", slot))
	}

	if candidate.SalaryMissing() {
		if err := m.to(SlotSalaryFallback); err != nil {
			return fail(err)
		}
		o.log.Info("💰 Salary missing, analysing screenshot...")
		salary := o.extractor.ExtractSalaryFromScreenshot(ctx, material.Screenshot)
		if err := ctx.Err(); err != nil {
			return fail(errors.Wrapf(err, "slot %d: salary fallback interrupted", slot))
		}
		candidate.Salary = &salary
	}

	if err := m.to(SlotNormalizing); err != nil {
		return fail(err)
	}
	rec := canon.NormalizeCandidate(candidate)
	rec.Link = material.Link
	rec.ScrapedAt = o.now().UTC()
	rec.Source = o.opts.Source
	rec.RequirementsHTML = material.HTML

	if err := m.to(SlotPersisting); err != nil {
		return fail(err)
	}
	index := o.store.NextIndex()
	if _, err := o.store.Save(rec, index); err != nil {
		return fail(errors.Wrapf(err, "slot %d: save job", slot))
	}
	o.mirrorJob(ctx, index, rec)

	if err := m.to(SlotDone); err != nil {
		return fail(err)
	}
	return SlotDone, nil
}

func (o *Orchestrator) mirrorJob(ctx context.Context, index int, rec models.JobRecord) {
	if o.mirror == nil {
		return
	}
	inserted, err := o.mirror.SaveJob(ctx, index, rec)
	if err != nil {
		o.log.Warnf("⚠️ Failed to mirror job %d to database: %v", index, err)
		return
	}
	if !inserted {
		o.log.Debugf("Job %d already in database", index)
	}
}

func (o *Orchestrator) notify(summary models.SessionSummary) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.SendSummary(summary); err != nil {
		o.log.Warnf("⚠️ Failed to send summary to Telegram: %v", err)
	}
}

func (o *Orchestrator) advanceRun(next RunState) {
	if err := o.run.to(next); err != nil {
		o.log.Errorf("❌ %v", err)
		o.run.state = next
	}
}

func (o *Orchestrator) printSummary(s models.SessionSummary) {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 SCRAPING SESSION SUMMARY (%s)\n", s.Status)
	fmt.Fprintf(&b, "⏰ Start: %s  End: %s\n", s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339))
	fmt.Fprintf(&b, "📋 Attempted: %d  ✅ Successful: %d  ❌ Failed: %d  ⏭️ Skipped: %d",
		s.TotalJobs, s.SuccessfulJobs, s.FailedJobs, s.SkippedJobs)
	for i, e := range s.Errors {
		job := "N/A"
		if e.SlotIndex > 0 {
			job = fmt.Sprint(e.SlotIndex)
		}
		fmt.Fprintf(&b, "\n  %d. Job %s: %s", i+1, job, e.Error)
	}
	o.log.Info(b.String())
}
