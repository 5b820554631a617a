package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/foodquery/internal/database"
)

// DefaultSchedule probes the store once a minute
const DefaultSchedule = "@every 1m"

// minFileProbeInterval limits probes triggered by bursts of writes
const minFileProbeInterval = time.Second

// probeTimeout bounds a single probe so a stalled store cannot pile up
// scheduled runs.
const probeTimeout = 10 * time.Second

// Prober is the subset of the database a probe needs
type Prober interface {
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (database.TableCounts, error)
}

// Status is the outcome of the most recent probe
type Status struct {
	Healthy   bool                 `json:"healthy"`
	LastProbe time.Time            `json:"last_probe"`
	Counts    database.TableCounts `json:"counts"`
	Error     string               `json:"error,omitempty"`
	FileEvent string               `json:"file_event,omitempty"`
}

// Monitor periodically probes the store and watches the database file so
// /healthz can report a store that went away.
type Monitor struct {
	db       Prober
	path     string
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	watcher  *fsnotify.Watcher

	mu      sync.RWMutex
	status  Status
	running bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a monitor for the database at path. An empty schedule disables
// periodic probes; the file watch and on-demand probes still run.
func New(db Prober, path, schedule string) *Monitor {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Monitor{
		db:       db,
		path:     path,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start runs an initial probe, schedules the periodic one and starts the
// file watch. A failing watch is returned but leaves probing running.
func (m *Monitor) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.running = true
	m.mu.Unlock()

	m.Probe(m.ctx)

	if m.schedule != "" {
		id, err := m.cron.AddFunc(m.schedule, func() { m.Probe(m.ctx) })
		if err != nil {
			return fmt.Errorf("invalid probe schedule %q: %w", m.schedule, err)
		}
		m.entryID = id
	}
	m.cron.Start()

	if err := m.watchFile(); err != nil {
		return err
	}

	log.Info().
		Str("schedule", m.schedule).
		Str("path", m.path).
		Msg("Store monitor started")
	return nil
}

// Stop stops the scheduler and the file watch
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()
	ctx := m.cron.Stop()
	<-ctx.Done()

	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()

	log.Info().Msg("Store monitor stopped")
}

// Status returns a copy of the latest status
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// NextProbe returns when the scheduler runs next, or zero when unscheduled
func (m *Monitor) NextProbe() time.Time {
	if m.entryID == 0 {
		return time.Time{}
	}
	return m.cron.Entry(m.entryID).Next
}

// Probe pings the store and counts rows in both tables
func (m *Monitor) Probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status := Status{LastProbe: time.Now()}

	if err := m.db.Ping(ctx); err != nil {
		status.Error = err.Error()
	} else if counts, err := m.db.Counts(ctx); err != nil {
		status.Error = err.Error()
	} else {
		status.Healthy = true
		status.Counts = counts
	}

	m.mu.Lock()
	status.FileEvent = m.status.FileEvent
	m.status = status
	m.mu.Unlock()

	if status.Healthy {
		log.Debug().
			Int64("restaurants", status.Counts.Restaurants).
			Int64("dishes", status.Counts.Dishes).
			Msg("Store probe succeeded")
	} else {
		log.Warn().Str("error", status.Error).Msg("Store probe failed")
	}

	return status
}

// watchFile watches the directory holding the database. SQLite tools and
// deploy scripts often replace the file, which a watch on the file itself
// would lose.
func (m *Monitor) watchFile() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	m.watcher = w

	m.wg.Add(1)
	go m.eventLoop()
	return nil
}

func (m *Monitor) eventLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleEvent(event)

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Database file watcher error")
		}
	}
}

// handleEvent reacts to changes of the database file only; -wal and -shm
// siblings are ignored.
func (m *Monitor) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(m.path) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		log.Warn().Str("path", event.Name).Str("op", event.Op.String()).Msg("Database file moved or removed")
		m.mu.Lock()
		m.status.Healthy = false
		m.status.Error = "database file " + event.Op.String()
		m.status.FileEvent = event.Op.String()
		m.mu.Unlock()

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Database file changed")
		m.mu.Lock()
		m.status.FileEvent = event.Op.String()
		recent := time.Since(m.status.LastProbe) < minFileProbeInterval
		m.mu.Unlock()
		if !recent {
			m.Probe(m.ctx)
		}
	}
}
