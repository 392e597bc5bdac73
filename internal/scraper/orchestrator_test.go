package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"go-job-extractor/internal/browser"
	"go-job-extractor/internal/models"
	"go-job-extractor/internal/store"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	cards      int
	links      map[int]string
	detailErrs map[int]error
	panicSlot  int
	openErr    error
	listErr    error

	opened     int
	closed     int
	detailSeen []int
}

func (f *fakeSession) Open(context.Context, string) error {
	f.opened++
	return f.openErr
}

func (f *fakeSession) ListCards(context.Context) ([]browser.Card, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	cards := make([]browser.Card, f.cards)
	for i := range cards {
		cards[i] = browser.Card{Index: i}
	}
	return cards, nil
}

func (f *fakeSession) OpenDetail(_ context.Context, _ browser.Card, slot int) error {
	f.detailSeen = append(f.detailSeen, slot)
	if slot == f.panicSlot {
		panic("detached element")
	}
	return f.detailErrs[slot]
}

func (f *fakeSession) CaptureMaterial(_ context.Context, card browser.Card) (models.RawListingMaterial, error) {
	link, ok := f.links[card.Index+1]
	if !ok {
		link = fmt.Sprintf("https://jobs.example.com/listing/%d", card.Index+1)
	}
	return models.RawListingMaterial{
		Link:           link,
		HTML:           fmt.Sprintf("<div>job %d</div>", card.Index+1),
		Screenshot:     []byte("png"),
		FallbackSalary: models.NotAvailable,
	}, nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

type fakeExtractor struct {
	reply        func(html string) models.CandidateRecord
	visionSalary string
	htmlCalls    int
	visionCalls  int
	// called inside the matching stage, e.g. to cancel the run mid-call
	onHTML   func()
	onVision func()
}

func (f *fakeExtractor) ExtractFromHTML(_ context.Context, html, fallback string) models.CandidateRecord {
	f.htmlCalls++
	if f.onHTML != nil {
		f.onHTML()
	}
	if f.reply != nil {
		return f.reply(html)
	}
	salary := "£50,000"
	return models.CandidateRecord{
		Title:           "Software Engineer",
		Company:         "Acme",
		Description:     "Builds things",
		Technologies:    []string{"golang", "Docker", "go"},
		VisaSponsorship: models.VisaUnknown,
		Salary:          &salary,
		Location:        "London",
		Remote:          models.RemoteHybrid,
		ExperienceLevel: models.ExperienceJunior,
	}
}

func (f *fakeExtractor) ExtractSalaryFromScreenshot(context.Context, []byte) string {
	f.visionCalls++
	if f.onVision != nil {
		f.onVision()
	}
	if f.visionSalary == "" {
		return models.NotAvailable
	}
	return f.visionSalary
}

type fakeMirror struct {
	saved []int
	err   error
}

func (f *fakeMirror) SaveJob(_ context.Context, index int, _ models.JobRecord) (bool, error) {
	f.saved = append(f.saved, index)
	return f.err == nil, f.err
}

type fakeNotifier struct {
	summaries []models.SessionSummary
}

func (f *fakeNotifier) SendSummary(s models.SessionSummary) error {
	f.summaries = append(f.summaries, s)
	return errors.New("telegram down")
}

type harness struct {
	dir       string
	store     *store.FileStore
	session   *fakeSession
	extractor *fakeExtractor
	orch      *Orchestrator
	sleeps    []time.Duration
}

func newHarness(t *testing.T, session *fakeSession, extractor *fakeExtractor, dir string) *harness {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	log := zap.NewNop().Sugar()
	h := &harness{
		dir:       dir,
		store:     store.New(store.Options{Dir: dir}, log),
		session:   session,
		extractor: extractor,
	}
	h.orch = NewOrchestrator(session, extractor, h.store, Options{
		SearchURL: "https://jobs.example.com/search",
		Source:    "glassdoor",
		MaxJobs:   10,
		Delay:     1500 * time.Millisecond,
	}, log)
	h.orch.sleep = func(ctx context.Context, d time.Duration) error {
		h.sleeps = append(h.sleeps, d)
		return ctx.Err()
	}
	h.orch.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func (h *harness) jobFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(h.dir, "job_*.json"))
	require.NoError(t, err)
	sort.Strings(matches)
	return matches
}

func (h *harness) readJob(t *testing.T, name string) models.JobRecord {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	var rec models.JobRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	return rec
}

func (h *harness) sessionFiles(t *testing.T) []models.SessionSummary {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(h.dir, "sessions", "session_*.json"))
	require.NoError(t, err)
	var out []models.SessionSummary
	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		var s models.SessionSummary
		require.NoError(t, json.Unmarshal(data, &s))
		out = append(out, s)
	}
	return out
}

func TestRun_DetailTimeoutIsolatedToSlot(t *testing.T) {
	session := &fakeSession{
		cards: 3,
		detailErrs: map[int]error{
			2: &browser.DetailTimeoutError{Slot: 2, Timeout: 10 * time.Second},
		},
	}
	h := newHarness(t, session, &fakeExtractor{}, "")

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunComplete, summary.Status)
	assert.Equal(t, 3, summary.TotalJobs)
	assert.Equal(t, 2, summary.SuccessfulJobs)
	assert.Equal(t, 1, summary.FailedJobs)
	assert.Equal(t, 0, summary.SkippedJobs)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].SlotIndex)
	assert.Contains(t, summary.Errors[0].Error, "slot 2")
	assert.False(t, summary.Errors[0].Fatal)

	files := h.jobFiles(t)
	require.Len(t, files, 2)
	first := h.readJob(t, "job_1.json")
	second := h.readJob(t, "job_2.json")
	assert.Equal(t, "https://jobs.example.com/listing/1", first.Link)
	assert.Equal(t, "https://jobs.example.com/listing/3", second.Link)

	assert.Equal(t, 1, session.closed)
	assert.Equal(t, RunComplete, h.orch.State())

	flushed := h.sessionFiles(t)
	require.Len(t, flushed, 1)
	assert.Equal(t, summary.RunID, flushed[0].RunID)
	assert.Equal(t, 2, flushed[0].SuccessfulJobs)
}

func TestRun_PersistsNormalizedRecord(t *testing.T) {
	h := newHarness(t, &fakeSession{cards: 1}, &fakeExtractor{}, "")

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	rec := h.readJob(t, "job_1.json")
	assert.Equal(t, "Software Engineer", rec.Title)
	assert.Equal(t, []string{"Go", "Docker"}, rec.Technologies)
	assert.Equal(t, "£50,000", rec.Salary)
	assert.Equal(t, "glassdoor", rec.Source)
	assert.Equal(t, "<div>job 1</div>", rec.RequirementsHTML)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), rec.ScrapedAt)
}

func TestRun_RerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first := newHarness(t, &fakeSession{cards: 3}, &fakeExtractor{}, dir)
	summary, err := first.orch.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, summary.SuccessfulJobs)

	extractor := &fakeExtractor{}
	second := newHarness(t, &fakeSession{cards: 3}, extractor, dir)
	summary, err = second.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.SuccessfulJobs)
	assert.Equal(t, 3, summary.SkippedJobs)
	assert.Equal(t, 0, summary.FailedJobs)
	assert.Equal(t, 0, extractor.htmlCalls, "dedup must short-circuit extraction")
	assert.Len(t, second.jobFiles(t), 3)
	assert.Len(t, second.sessionFiles(t), 2)
}

func TestRun_DuplicateLinkWithinRunIsSkipped(t *testing.T) {
	session := &fakeSession{
		cards: 3,
		links: map[int]string{1: "https://jobs.example.com/same", 2: "https://jobs.example.com/same"},
	}
	h := newHarness(t, session, &fakeExtractor{}, "")

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SuccessfulJobs)
	assert.Equal(t, 1, summary.SkippedJobs)
	assert.Len(t, h.jobFiles(t), 2)
}

func TestRun_ContinuesIndexFromExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []int{1, 2, 5} {
		rec := models.JobRecord{Link: fmt.Sprintf("https://old.example.com/%d", n)}
		data, err := json.Marshal(rec)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, fmt.Sprintf("job_%d.json", n)), data, 0o644))
	}

	h := newHarness(t, &fakeSession{cards: 2}, &fakeExtractor{}, dir)
	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "job_6.json"))
	assert.FileExists(t, filepath.Join(dir, "job_7.json"))
}

func TestRun_MalformedExtractionStillPersisted(t *testing.T) {
	extractor := &fakeExtractor{
		reply: func(string) models.CandidateRecord {
			return models.MinimalCandidate(models.NotAvailable, "parse extraction response: invalid character 'I'")
		},
	}
	h := newHarness(t, &fakeSession{cards: 1}, extractor, "")

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SuccessfulJobs)
	assert.Equal(t, 0, summary.FailedJobs)
	rec := h.readJob(t, "job_1.json")
	assert.Equal(t, "Unknown", rec.Title)
	assert.NotEmpty(t, rec.ExtractionError)
	assert.Equal(t, models.NotSpecified, rec.Salary)
	assert.Equal(t, 1, extractor.visionCalls)
}

func TestRun_VisionFallbackSalary(t *testing.T) {
	extractor := &fakeExtractor{
		reply: func(string) models.CandidateRecord {
			return models.CandidateRecord{Title: "Dev", Company: "Acme", Location: "London", Technologies: []string{}}
		},
		visionSalary: "£45,000–£55,000",
	}
	h := newHarness(t, &fakeSession{cards: 1}, extractor, "")

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, extractor.visionCalls)
	assert.Equal(t, "£45,000–£55,000", h.readJob(t, "job_1.json").Salary)
}

func TestRun_VisionNotCalledWhenSalaryPresent(t *testing.T) {
	extractor := &fakeExtractor{}
	h := newHarness(t, &fakeSession{cards: 2}, extractor, "")

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, extractor.visionCalls)
}

func TestRun_ExactlyOneOutcomePerSlot(t *testing.T) {
	dir := t.TempDir()
	existing := models.JobRecord{Link: "https://jobs.example.com/listing/4"}
	data, err := json.Marshal(existing)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "job_1.json"), data, 0o644))

	session := &fakeSession{
		cards:      6,
		detailErrs: map[int]error{2: errors.New("element detached")},
		panicSlot:  5,
	}
	h := newHarness(t, session, &fakeExtractor{}, dir)

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, summary.TotalJobs)
	assert.Equal(t, summary.TotalJobs, summary.SuccessfulJobs+summary.FailedJobs+summary.SkippedJobs)
	assert.Equal(t, 3, summary.SuccessfulJobs)
	assert.Equal(t, 2, summary.FailedJobs)
	assert.Equal(t, 1, summary.SkippedJobs)
	assert.Len(t, h.jobFiles(t), 1+summary.SuccessfulJobs)

	require.Len(t, summary.Errors, 2)
	assert.Equal(t, 2, summary.Errors[0].SlotIndex)
	assert.Equal(t, 5, summary.Errors[1].SlotIndex)
	assert.Contains(t, summary.Errors[1].Error, "panicked")
}

func TestRun_MaxJobsBoundsSlots(t *testing.T) {
	session := &fakeSession{cards: 8}
	h := newHarness(t, session, &fakeExtractor{}, "")
	h.orch.opts.MaxJobs = 3

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalJobs)
	assert.Equal(t, []int{1, 2, 3}, session.detailSeen)
}

func TestRun_DelayOnlyBetweenSlots(t *testing.T) {
	h := newHarness(t, &fakeSession{cards: 3}, &fakeExtractor{}, "")

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 1500 * time.Millisecond}, h.sleeps)
}

func TestRun_NoDelayForSingleSlot(t *testing.T) {
	h := newHarness(t, &fakeSession{cards: 1}, &fakeExtractor{}, "")

	_, err := h.orch.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.sleeps)
}

func TestRun_FatalErrorsAbort(t *testing.T) {
	tests := []struct {
		name    string
		session *fakeSession
		want    string
	}{
		{
			name:    "navigation failure",
			session: &fakeSession{cards: 3, openErr: errors.New("net::ERR_NAME_NOT_RESOLVED")},
			want:    "open search page",
		},
		{
			name:    "card enumeration failure",
			session: &fakeSession{listErr: errors.New("target closed")},
			want:    "list job cards",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.session, &fakeExtractor{}, "")

			summary, err := h.orch.Run(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFatal))
			assert.Contains(t, err.Error(), tt.want)

			assert.Equal(t, models.RunAborted, summary.Status)
			assert.Equal(t, 0, summary.TotalJobs)
			require.Len(t, summary.Errors, 1)
			assert.True(t, summary.Errors[0].Fatal)
			assert.Zero(t, summary.Errors[0].SlotIndex)

			assert.Equal(t, 1, tt.session.closed, "browser must be closed on abort")
			assert.Len(t, h.sessionFiles(t), 1, "summary must be flushed on abort")
			assert.Empty(t, h.jobFiles(t))
			assert.Equal(t, RunAborted, h.orch.State())
		})
	}
}

func TestRun_LoadFailureAbortsWithoutOpeningBrowser(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	session := &fakeSession{cards: 1}
	log := zap.NewNop().Sugar()
	st := store.New(store.Options{Dir: blocker, SessionsDir: filepath.Join(dir, "sessions")}, log)
	orch := NewOrchestrator(session, &fakeExtractor{}, st, Options{MaxJobs: 1}, log)

	summary, err := orch.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatal))
	assert.Equal(t, models.RunAborted, summary.Status)
	assert.Equal(t, 0, session.opened)
	assert.Equal(t, 0, session.closed)
}

func TestRun_CancelledContextAborts(t *testing.T) {
	h := newHarness(t, &fakeSession{cards: 3}, &fakeExtractor{}, "")
	ctx, cancel := context.WithCancel(context.Background())
	h.orch.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	summary, err := h.orch.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatal))
	assert.Equal(t, models.RunAborted, summary.Status)
	assert.Equal(t, 1, summary.TotalJobs)
	assert.Equal(t, 1, summary.SuccessfulJobs)
	assert.Equal(t, 1, h.session.closed)
}

func TestRun_CancelDuringExtractionPersistsNothing(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(ex *fakeExtractor, cancel context.CancelFunc)
		vision int
	}{
		{
			name: "text extraction",
			setup: func(ex *fakeExtractor, cancel context.CancelFunc) {
				ex.onHTML = cancel
				ex.reply = func(string) models.CandidateRecord {
					return models.MinimalCandidate(models.NotAvailable, "extraction call: context canceled")
				}
			},
			vision: 0,
		},
		{
			name: "salary fallback",
			setup: func(ex *fakeExtractor, cancel context.CancelFunc) {
				ex.onVision = cancel
				ex.reply = func(string) models.CandidateRecord {
					return models.CandidateRecord{Title: "Go Developer", Company: "Acme"}
				}
			},
			vision: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &fakeExtractor{}
			h := newHarness(t, &fakeSession{cards: 2}, extractor, "")
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			tt.setup(extractor, cancel)

			summary, err := h.orch.Run(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFatal))
			assert.Equal(t, models.RunAborted, summary.Status)

			assert.Empty(t, h.jobFiles(t))
			assert.Equal(t, 0, summary.SuccessfulJobs)
			assert.Equal(t, 1, summary.FailedJobs)
			assert.Equal(t, tt.vision, extractor.visionCalls)
			assert.False(t, h.store.Exists("https://jobs.example.com/listing/1"))
			assert.Equal(t, 1, h.session.closed)
		})
	}
}

func TestRun_MirrorAndNotifierFailuresAreIgnored(t *testing.T) {
	h := newHarness(t, &fakeSession{cards: 2}, &fakeExtractor{}, "")
	mirror := &fakeMirror{err: errors.New("connection refused")}
	notifier := &fakeNotifier{}
	h.orch.WithMirror(mirror).WithNotifier(notifier)

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SuccessfulJobs)
	assert.Equal(t, []int{1, 2}, mirror.saved)
	require.Len(t, notifier.summaries, 1)
	assert.Equal(t, summary.RunID, notifier.summaries[0].RunID)
}

func TestRun_SaveFailureCountsAsFailed(t *testing.T) {
	h := newHarness(t, &fakeSession{cards: 2}, &fakeExtractor{}, "")
	// occupy job_1.json after Load so the exclusive create fails
	h.orch.store = &collidingStore{FileStore: h.store, dir: h.dir}

	summary, err := h.orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FailedJobs)
	assert.Equal(t, 1, summary.SuccessfulJobs)
	require.Len(t, summary.Errors, 1)
	assert.True(t, strings.Contains(summary.Errors[0].Error, "save job"))
}

type collidingStore struct {
	*store.FileStore
	dir  string
	done bool
}

func (c *collidingStore) Save(rec models.JobRecord, index int) (string, error) {
	if !c.done {
		c.done = true
		if err := os.WriteFile(filepath.Join(c.dir, fmt.Sprintf("job_%d.json", index)), []byte("{}"), 0o644); err != nil {
			return "", err
		}
	}
	return c.FileStore.Save(rec, index)
}
