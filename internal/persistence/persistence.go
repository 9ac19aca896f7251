// Package persistence implements §6.5's snapshot layout: an atomic JSON
// save of the canonical gamestate.Snapshot, a single always-present
// `.bak` rotation, operator-triggered named backups (lz4-compressed),
// and the append-only bug-report log. Saving never blocks the engine
// goroutine directly — Manager coalesces concurrent save requests into
// a single write-behind slot per §5.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog"

	"github.com/lab1702/starweb/internal/enginerr"
	"github.com/lab1702/starweb/internal/gamestate"
)

const (
	stateFileName = "gamestate.json"
	bugReportFile = "bug_reports.jsonl"
)

// Manager owns the data directory and coalesces save requests: if a
// save is already in flight when Save is called again, the newer
// snapshot simply replaces the pending one rather than queuing a
// second disk write (§6.5 "if a save is in flight, a new request
// coalesces").
type Manager struct {
	dataDir string
	log     zerolog.Logger

	mu      sync.Mutex
	pending *gamestate.Snapshot
	saving  bool
}

// New returns a Manager rooted at dataDir, creating it if absent.
func New(dataDir string, log zerolog.Logger) (*Manager, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	return &Manager{dataDir: dataDir, log: log}, nil
}

func (m *Manager) statePath() string { return filepath.Join(m.dataDir, stateFileName) }
func (m *Manager) bakPath() string   { return m.statePath() + ".bak" }
func (m *Manager) tmpPath() string   { return m.statePath() + ".tmp" }

// Save enqueues snap for write-behind persistence. The caller's copy of
// snap is not retained after the actual write starts, so mutating the
// originating State afterward is safe.
func (m *Manager) Save(snap gamestate.Snapshot) {
	m.mu.Lock()
	m.pending = &snap
	alreadySaving := m.saving
	m.mu.Unlock()

	if alreadySaving {
		return
	}
	go m.drain()
}

func (m *Manager) drain() {
	m.mu.Lock()
	if m.saving {
		m.mu.Unlock()
		return
	}
	m.saving = true
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.pending
		m.pending = nil
		if next == nil {
			m.saving = false
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		if err := m.writeNow(*next); err != nil {
			m.log.Error().Err(err).Msg("snapshot save failed")
		}
	}
}

// SaveSync persists snap immediately, bypassing coalescing. Used on
// graceful shutdown (§6.5 "save is enqueued ... and on graceful
// shutdown"), where the process needs to know the write landed before
// exiting.
func (m *Manager) SaveSync(snap gamestate.Snapshot) error {
	return m.writeNow(snap)
}

// writeNow implements the save protocol: write to .tmp, fsync, rotate
// current -> .bak, rename .tmp -> current.
func (m *Manager) writeNow(snap gamestate.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := m.tmpPath()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open tmp snapshot: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return fmt.Errorf("write tmp snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync tmp snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close tmp snapshot: %w", err)
	}

	current := m.statePath()
	if _, err := os.Stat(current); err == nil {
		if err := os.Rename(current, m.bakPath()); err != nil {
			return fmt.Errorf("rotate snapshot to .bak: %w", err)
		}
	}
	if err := os.Rename(tmp, current); err != nil {
		return fmt.Errorf("rename tmp snapshot into place: %w", err)
	}
	m.log.Info().Str("path", current).Int("turn", snap.Turn).Msg("snapshot saved")
	return nil
}

// Load reads the canonical snapshot, falling back to the .bak rotation
// if the primary file is missing or fails to parse — a crash between
// the .tmp write and the final rename can leave the primary absent, but
// .bak always holds the last fully-committed save. When neither file
// exists it returns the not-exist error rather than a CorruptStateError,
// so a first start can build a fresh game.
func (m *Manager) Load() (gamestate.Snapshot, error) {
	snap, err := m.readSnapshotFile(m.statePath())
	if err == nil {
		return snap, nil
	}
	m.log.Warn().Err(err).Msg("primary snapshot unreadable, falling back to .bak")

	snap, bakErr := m.readSnapshotFile(m.bakPath())
	if bakErr != nil {
		if os.IsNotExist(err) && os.IsNotExist(bakErr) {
			return gamestate.Snapshot{}, err
		}
		return gamestate.Snapshot{}, &enginerr.CorruptStateError{Path: m.statePath(), Reason: err.Error()}
	}
	return snap, nil
}

func (m *Manager) readSnapshotFile(path string) (gamestate.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return gamestate.Snapshot{}, err
	}
	var snap gamestate.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return gamestate.Snapshot{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap, nil
}

// Backup writes a named, lz4-compressed copy of snap alongside the
// plain-JSON `.bak` rotation (§6.5's `gamestate.json.backup.*`),
// timestamped by the caller since Date.Now-equivalents are off-limits
// inside the engine's own deterministic paths — the administrative CLI
// supplies `at`.
func (m *Manager) Backup(snap gamestate.Snapshot, at time.Time) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot for backup: %w", err)
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("compress backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalize backup compression: %w", err)
	}

	name := fmt.Sprintf("%s.backup.%s", stateFileName, at.Format("20060102_150405"))
	path := filepath.Join(m.dataDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write backup %s: %w", path, err)
	}
	return path, nil
}

// RestoreBackup reverses Backup: decompresses a named backup file and
// returns the Snapshot it held, for the administrative CLI's
// restore-state command (§6.3). It does not itself overwrite the live
// snapshot — callers do that via SaveSync once satisfied.
func (m *Manager) RestoreBackup(name string) (gamestate.Snapshot, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.dataDir, name)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return gamestate.Snapshot{}, fmt.Errorf("read backup %s: %w", path, err)
	}
	zr := lz4.NewReader(bytes.NewReader(raw))
	var out bytes.Buffer
	if _, err := io.Copy(&out, zr); err != nil {
		return gamestate.Snapshot{}, fmt.Errorf("decompress backup %s: %w", path, err)
	}
	var snap gamestate.Snapshot
	if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
		return gamestate.Snapshot{}, fmt.Errorf("parse backup %s: %w", path, err)
	}
	return snap, nil
}

// BugReport is one line of data/bug_reports.jsonl (§6.1's bug_report
// client frame, persisted verbatim for later operator review via §6.3's
// list-bug-reports command).
type BugReport struct {
	Description string    `json:"description"`
	GameTurn    int       `json:"game_turn"`
	PlayerName  string    `json:"player_name"`
	Timestamp   time.Time `json:"timestamp"`
}

// AppendBugReport appends one JSON object per line to
// data/bug_reports.jsonl, opening the file in append mode so concurrent
// writers from the single engine goroutine never race each other (only
// one goroutine ever calls this, serialized by the engine's own
// single-writer discipline).
func (m *Manager) AppendBugReport(r BugReport) error {
	f, err := os.OpenFile(filepath.Join(m.dataDir, bugReportFile), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open bug report log: %w", err)
	}
	defer f.Close()

	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal bug report: %w", err)
	}
	raw = append(raw, '\n')
	if _, err := f.Write(raw); err != nil {
		return fmt.Errorf("append bug report: %w", err)
	}
	return nil
}

// ListBugReports reads back every recorded bug report in file order,
// for §6.3's list-bug-reports administrative command.
func (m *Manager) ListBugReports() ([]BugReport, error) {
	raw, err := os.ReadFile(filepath.Join(m.dataDir, bugReportFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read bug report log: %w", err)
	}
	var reports []BugReport
	for _, line := range bytes.Split(raw, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var r BugReport
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parse bug report line: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
