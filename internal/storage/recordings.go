// Package storage persists finished captures as one JSON document per
// recording under the upload directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Capture/internal/core"
	"github.com/dkeye/Capture/internal/domain"
)

// Recording ids look like recording_20060102_150405_000001: wall-clock
// timestamp plus a process-wide counter, so concurrent saves within one
// second never collide and lexical order equals chronological order.
var idPattern = regexp.MustCompile(`^recording_\d{8}_\d{6}_\d{6}$`)

type Store struct {
	dir string
	seq atomic.Uint64
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.NewStorageError("init", err)
	}
	s := &Store{dir: dir}
	// Resume the counter past existing documents so a restart within the
	// same second cannot reuse an id.
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			id := strings.TrimSuffix(e.Name(), ".json")
			if !idPattern.MatchString(id) {
				continue
			}
			var n uint64
			if _, err := fmt.Sscanf(id[strings.LastIndex(id, "_")+1:], "%d", &n); err == nil && n > s.seq.Load() {
				s.seq.Store(n)
			}
		}
	}
	return s, nil
}

var _ core.RecordingStore = (*Store)(nil)

// Save writes the document to a temp file and renames it into place, so
// a failed save leaves nothing visible to Get or List.
func (s *Store) Save(rec domain.RecordingRecord) (domain.RecordingID, error) {
	now := time.Now()
	id := domain.RecordingID(fmt.Sprintf("recording_%s_%06d", now.Format("20060102_150405"), s.seq.Add(1)))
	rec.ID = id
	if rec.Timestamp == "" {
		rec.Timestamp = now.Format("20060102_150405")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", domain.NewStorageError("encode", err)
	}

	final := filepath.Join(s.dir, string(id)+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", domain.NewStorageError("write", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return "", domain.NewStorageError("write", err)
	}

	log.Info().Str("module", "storage").Str("recording", string(id)).Msg("recording persisted")
	return id, nil
}

func (s *Store) Get(id domain.RecordingID) (domain.RecordingRecord, error) {
	if !idPattern.MatchString(string(id)) {
		return domain.RecordingRecord{}, domain.ErrRecordingNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, string(id)+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.RecordingRecord{}, domain.ErrRecordingNotFound
		}
		return domain.RecordingRecord{}, domain.NewStorageError("read", err)
	}
	var rec domain.RecordingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.RecordingRecord{}, domain.NewStorageError("decode", err)
	}
	rec.ID = id
	return rec, nil
}

// List returns summaries newest first. The id embeds (timestamp, seq),
// so descending lexical order is descending chronological order.
func (s *Store) List() ([]domain.RecordingSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, domain.NewStorageError("list", err)
	}

	out := make([]domain.RecordingSummary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		id := strings.TrimSuffix(name, ".json")
		if e.IsDir() || !strings.HasSuffix(name, ".json") || !idPattern.MatchString(id) {
			continue
		}
		rec, err := s.Get(domain.RecordingID(id))
		if err != nil {
			return nil, err
		}
		out = append(out, domain.RecordingSummary{
			ID:            rec.ID,
			Timestamp:     rec.Timestamp,
			Duration:      rec.Duration,
			AppliedParams: rec.AppliedParams,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
