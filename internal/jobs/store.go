package jobs

import "sync"

// Store tracks jobs by id. The runner is its only writer; HTTP handlers read
// snapshots. Implementations must be safe for concurrent use.
type Store interface {
	Create(job *Job) error
	Get(id string) (*Job, error)
	Update(id string, mutate func(*Job)) error
}

// MemoryStore is the process-lifetime job table. Jobs are never deleted and
// are lost on restart, matching the ephemeral-by-design job flow.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Create(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *job
	s.jobs[job.ID] = &stored
	return nil
}

// Get returns a snapshot copy so readers never race the background task.
func (s *MemoryStore) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	snapshot := *job
	return &snapshot, nil
}

func (s *MemoryStore) Update(id string, mutate func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	mutate(job)
	return nil
}
