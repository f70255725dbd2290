package jobqueue

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule is the cron schedule of the archive sweep.
const DefaultSweepSchedule = "@every 15m"

// Manager runs the job queue and the periodic archive sweep
type Manager struct {
	queue    *Queue
	archiver *Archiver
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

// NewManager creates a manager. An empty schedule means DefaultSweepSchedule.
func NewManager(queue *Queue, archiver *Archiver, schedule string) *Manager {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Manager{
		queue:    queue,
		archiver: archiver,
		schedule: schedule,
	}
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Archiver returns the archiver whose jobs the queue runs
func (m *Manager) Archiver() *Archiver {
	return m.archiver
}

// Start starts the workers and schedules the sweep
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(m.schedule, m.sweepOnce); err != nil {
		return err
	}

	log.Infof("[JobQueue Manager] Starting job queue, archive sweep %q", m.schedule)
	m.queue.Start()
	c.Start()
	m.cron = c
	m.running = true
	return nil
}

// Stop stops the sweep and the workers
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and archive sweep...")
	<-m.cron.Stop().Done()
	m.queue.Stop()
	m.running = false
	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) sweepOnce() {
	if _, err := m.archiver.Sweep(context.Background()); err != nil {
		log.Errorf("[JobQueue Manager] Archive sweep error: %v", err)
	}
}
