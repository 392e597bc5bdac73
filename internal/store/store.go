package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-job-extractor/internal/dedup"
	"go-job-extractor/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateLink is returned by Save when the link is already stored.
	ErrDuplicateLink = errors.New("job link already stored")
	// ErrFileExists is returned when the target file is already on disk.
	ErrFileExists = errors.New("record file already exists")
)

const sessionTimeLayout = "2006-01-02T15-04-05.000Z"

type Options struct {
	Dir         string
	JobPrefix   string
	SessionsDir string
}

// FileStore keeps one pretty-printed JSON file per job plus one file per run
// summary. Files are created once and never rewritten.
type FileStore struct {
	dir         string
	prefix      string
	sessionsDir string
	namePattern *regexp.Regexp
	log         *zap.SugaredLogger

	snapshot *dedup.Snapshot
	written  map[string]bool
	next     int
}

func New(opts Options, log *zap.SugaredLogger) *FileStore {
	if opts.JobPrefix == "" {
		opts.JobPrefix = "job_"
	}
	if opts.SessionsDir == "" {
		opts.SessionsDir = filepath.Join(opts.Dir, "sessions")
	}
	return &FileStore{
		dir:         opts.Dir,
		prefix:      opts.JobPrefix,
		sessionsDir: opts.SessionsDir,
		namePattern: regexp.MustCompile(`^` + regexp.QuoteMeta(opts.JobPrefix) + `(\d+)\.json$`),
		log:         log,
		written:     make(map[string]bool),
		next:        1,
	}
}

type indexedRecord struct {
	index  int
	record models.JobRecord
}

// Load reads every record file once, builds the dedup snapshot and the next
// free index. The output directory is created when missing.
func (s *FileStore) Load() (map[string]models.JobRecord, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", s.dir)
	}

	entries, maxIndex, err := s.readDir()
	if err != nil {
		return nil, err
	}

	records := make([]models.JobRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.record)
	}
	s.snapshot = dedup.NewSnapshot(records)
	s.next = maxIndex + 1
	s.log.Infof("📂 Loaded %d existing jobs (next index %d)", s.snapshot.Len(), s.next)

	return s.snapshot.Records(), nil
}

// ReadAll returns every stored record ordered by file index. It does not
// touch the run snapshot.
func (s *FileStore) ReadAll() ([]models.JobRecord, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return []models.JobRecord{}, nil
	}
	entries, _, err := s.readDir()
	if err != nil {
		return nil, err
	}
	out := make([]models.JobRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.record)
	}
	return out, nil
}

// readDir parses all record files. maxIndex counts every name matching the
// prefix pattern, even when its content does not parse.
func (s *FileStore) readDir() ([]indexedRecord, int, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "read output directory %s", s.dir)
	}

	var entries []indexedRecord
	maxIndex := 0
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}

		index := 0
		if m := s.namePattern.FindStringSubmatch(name); m != nil {
			index, _ = strconv.Atoi(m[1])
			if index > maxIndex {
				maxIndex = index
			}
		}

		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Warnf("⚠️ Failed to read %s: %v", name, err)
			continue
		}
		var rec models.JobRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warnf("⚠️ Failed to parse %s: %v", name, err)
			continue
		}
		entries = append(entries, indexedRecord{index: index, record: rec})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})
	return entries, maxIndex, nil
}

// NextIndex is one greater than the highest record index seen, or 1.
func (s *FileStore) NextIndex() int {
	return s.next
}

// Exists reports whether link was on disk at Load time or has been saved
// since. The loaded snapshot itself is never modified.
func (s *FileStore) Exists(link string) bool {
	return s.snapshot.IsSeen(link) || s.written[link]
}

// Save writes rec as <prefix><index>.json. It never overwrites a file and
// refuses a link that is already stored.
func (s *FileStore) Save(rec models.JobRecord, index int) (string, error) {
	if rec.Link == "" {
		return "", errors.New("job record has no link")
	}
	if s.Exists(rec.Link) {
		return "", errors.Wrapf(ErrDuplicateLink, "%s", rec.Link)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal job record")
	}

	path := filepath.Join(s.dir, s.prefix+strconv.Itoa(index)+".json")
	if err := writeExclusive(s.dir, path, data); err != nil {
		if errors.Is(err, ErrFileExists) && index >= s.next {
			// someone else owns this index; the next save moves past it
			s.next = index + 1
		}
		return "", errors.Wrapf(err, "save job %d", index)
	}

	s.written[rec.Link] = true
	if index >= s.next {
		s.next = index + 1
	}
	s.log.Infof("💾 Saved: %s", path)
	return path, nil
}

// SaveSessionSummary writes the run summary under the sessions directory,
// named by the current UTC time.
func (s *FileStore) SaveSessionSummary(summary models.SessionSummary) (string, error) {
	if err := os.MkdirAll(s.sessionsDir, 0755); err != nil {
		return "", errors.Wrapf(err, "create sessions directory %s", s.sessionsDir)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal session summary")
	}

	stamp := time.Now().UTC().Format(sessionTimeLayout)
	path := filepath.Join(s.sessionsDir, "session_"+stamp+".json")
	err = writeExclusive(s.sessionsDir, path, data)
	if errors.Is(err, ErrFileExists) {
		path = filepath.Join(s.sessionsDir, "session_"+stamp+"_"+uuid.NewString()[:8]+".json")
		err = writeExclusive(s.sessionsDir, path, data)
	}
	if err != nil {
		return "", errors.Wrap(err, "save session summary")
	}

	s.log.Infof("📊 Saved session metadata: %s", path)
	return path, nil
}

// writeExclusive writes to a temp file in dir and hard-links it into place,
// so the target is either absent or complete and is never replaced.
func writeExclusive(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}

	if err := os.Link(tmpName, path); err != nil {
		if os.IsExist(err) {
			return errors.Wrapf(ErrFileExists, "%s", path)
		}
		return errors.Wrapf(err, "link %s", path)
	}
	return nil
}
