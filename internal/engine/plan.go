package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"stacked.dev/st/internal/utils"
)

// Step rebases Branch onto Onto, the tip of Parent when the step was planned
type Step struct {
	Branch string `json:"branch"`
	Parent string `json:"parent"`
	Onto   string `json:"onto"`
	// OldBase is the upstream passed to rebase; resolved when the step starts
	OldBase string `json:"oldBase,omitempty"`
}

// Plan is an ordered list of restack steps plus everything needed to resume
// or undo it. Steps before Cursor have completed.
type Plan struct {
	ID     string `json:"id"`
	Root   string `json:"root"`
	Steps  []Step `json:"steps"`
	Cursor int    `json:"cursor"`
	// Snapshot is the forest before the first step ran
	Snapshot *Forest `json:"snapshot"`
	// OrigTips maps every branch touched by the plan to its tip before the plan
	OrigTips   map[string]string `json:"origTips"`
	OrigBranch string            `json:"origBranch,omitempty"`
	StartedAt  time.Time         `json:"startedAt"`
}

// NewPlan creates a plan with a fresh ID
func NewPlan(root string, steps []Step, snapshot *Forest) *Plan {
	return &Plan{
		ID:        ulid.Make().String(),
		Root:      root,
		Steps:     steps,
		Snapshot:  snapshot,
		OrigTips:  make(map[string]string),
		StartedAt: time.Now().UTC(),
	}
}

// Done reports whether every step has completed
func (p *Plan) Done() bool {
	return p.Cursor >= len(p.Steps)
}

// Current returns the step at the cursor, or nil when the plan is done
func (p *Plan) Current() *Step {
	if p.Done() {
		return nil
	}
	return &p.Steps[p.Cursor]
}

// PlanStore persists the outstanding plan so a conflict survives process exit
type PlanStore struct {
	mu   sync.Mutex
	path string
	mem  *Plan
}

// NewPlanStore stores the plan in dir/plan.json
func NewPlanStore(dir string) *PlanStore {
	return &PlanStore{path: filepath.Join(dir, PlanFile)}
}

// NewMemoryPlanStore keeps the plan in memory only
func NewMemoryPlanStore() *PlanStore {
	return &PlanStore{}
}

// Load returns the outstanding plan, or nil if there is none
func (s *PlanStore) Load() (*Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.mem == nil {
			return nil, nil
		}
		return clonePlan(s.mem)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return &plan, nil
}

// Save checkpoints plan
func (s *PlanStore) Save(plan *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		c, err := clonePlan(plan)
		if err != nil {
			return err
		}
		s.mem = c
		return nil
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return utils.WriteFileAtomic(s.path, data, 0o644)
}

// Clear discards the outstanding plan
func (s *PlanStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem = nil
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.path, err)
	}
	return nil
}

func clonePlan(p *Plan) (*Plan, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	var c Plan
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	return &c, nil
}
