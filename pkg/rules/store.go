package rules

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrRuleNotFound indicates the requested rule does not exist in the store.
var ErrRuleNotFound = errors.New("rule not found")

// Store is the in-memory rule collection. It is safe for concurrent use:
// writes take an exclusive lock, reads a shared lock, and every rule that
// leaves the store is a deep copy.
//
// Iteration order is insertion order, which is also the order rules are
// evaluated in for a campaign.
type Store struct {
	mu    sync.RWMutex
	rules []*Rule
	byID  map[string]*Rule
}

// NewStore creates an empty rule store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Rule),
	}
}

// Add validates the specification, assigns the rule ID, condition IDs, and
// timestamps, and appends the rule. It returns a copy of the stored rule.
func (s *Store) Add(spec CreateRule) (*Rule, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rule, err := s.buildLocked(spec, time.Now())
	if err != nil {
		return nil, err
	}

	s.rules = append(s.rules, rule)
	s.byID[rule.ID] = rule

	return rule.Clone(), nil
}

// buildLocked materializes a validated spec into a stored rule. The caller
// must hold the write lock.
func (s *Store) buildLocked(spec CreateRule, now time.Time) (*Rule, error) {
	id := spec.ID
	if id == "" {
		id = uuid.New().String()
	}
	if _, exists := s.byID[id]; exists {
		return nil, &ValidationError{
			RuleName: spec.Name,
			Errors:   []string{fmt.Sprintf("duplicate rule id %q", id)},
		}
	}

	conditions := make([]Condition, len(spec.Conditions))
	copy(conditions, spec.Conditions)
	normalizeConditions(conditions)

	isActive := true
	if spec.IsActive != nil {
		isActive = *spec.IsActive
	}

	rule := &Rule{
		ID:          id,
		Name:        spec.Name,
		Description: spec.Description,
		CampaignID:  spec.CampaignID,
		Conditions:  conditions,
		Action:      spec.Action,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return rule, nil
}

// normalizeConditions assigns missing condition IDs and defaults empty
// logical operators to AND.
func normalizeConditions(conditions []Condition) {
	for i := range conditions {
		if conditions[i].ID == "" {
			conditions[i].ID = uuid.New().String()
		}
		if conditions[i].LogicalOperatorToNext == "" {
			conditions[i].LogicalOperatorToNext = LogicalAnd
		}
	}
}

// Get returns a copy of the rule with the given ID.
func (s *Store) Get(id string) (*Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return rule.Clone(), true
}

// Update merges the set fields into the stored rule and refreshes UpdatedAt.
// The rule ID and CreatedAt never change. The merged rule is re-validated so
// an update cannot leave a rule in a state creation would have rejected.
func (s *Store) Update(id string, upd UpdateRule) (*Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("rule %s: %w", id, ErrRuleNotFound)
	}

	merged := rule.Clone()
	if upd.Name != nil {
		merged.Name = *upd.Name
	}
	if upd.Description != nil {
		merged.Description = *upd.Description
	}
	if upd.CampaignID != nil {
		merged.CampaignID = *upd.CampaignID
	}
	if upd.Conditions != nil {
		merged.Conditions = make([]Condition, len(upd.Conditions))
		copy(merged.Conditions, upd.Conditions)
	}
	if upd.Action != nil {
		merged.Action = *upd.Action
	}
	if upd.IsActive != nil {
		merged.IsActive = *upd.IsActive
	}

	spec := CreateRule{
		Name:       merged.Name,
		CampaignID: merged.CampaignID,
		Conditions: merged.Conditions,
		Action:     merged.Action,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	normalizeConditions(merged.Conditions)
	merged.UpdatedAt = time.Now()

	// Commit in place so slice iteration order is preserved.
	*rule = *merged

	return rule.Clone(), nil
}

// Delete removes the rule if present and reports whether it existed.
// Past log entries referencing the rule are unaffected.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)

	for i, r := range s.rules {
		if r.ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			break
		}
	}
	return true
}

// List returns copies of all rules in insertion order.
func (s *Store) List() []*Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.Clone())
	}
	return out
}

// ActiveForCampaign returns copies of the active rules bound to the
// campaign, in insertion order.
func (s *Store) ActiveForCampaign(campaignID string) []*Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Rule
	for _, r := range s.rules {
		if r.IsActive && r.CampaignID == campaignID {
			out = append(out, r.Clone())
		}
	}
	return out
}

// CampaignIDs returns the distinct campaign IDs that have at least one
// active rule, in first-seen order.
func (s *Store) CampaignIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, r := range s.rules {
		if r.IsActive && !seen[r.CampaignID] {
			seen[r.CampaignID] = true
			out = append(out, r.CampaignID)
		}
	}
	return out
}

// MarkTriggered records a successful triggered execution time on the rule.
// It reports whether the rule still exists. UpdatedAt is not touched; this
// is execution history, not a user edit.
func (s *Store) MarkTriggered(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.byID[id]
	if !ok {
		return false
	}
	t := at
	rule.LastTriggeredAt = &t
	return true
}

// Replace validates all specs and atomically swaps the store contents.
// On any validation error the store is left unchanged.
func (s *Store) Replace(specs []CreateRule) error {
	for i := range specs {
		if err := specs[i].Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &Store{byID: make(map[string]*Rule, len(specs))}
	now := time.Now()
	for i := range specs {
		rule, err := staged.buildLocked(specs[i], now)
		if err != nil {
			return err
		}
		staged.rules = append(staged.rules, rule)
		staged.byID[rule.ID] = rule
	}

	s.rules = staged.rules
	s.byID = staged.byID
	return nil
}

// Counts returns the total and active rule counts.
func (s *Store) Counts() (total, active int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total = len(s.rules)
	for _, r := range s.rules {
		if r.IsActive {
			active++
		}
	}
	return total, active
}

// Len returns the number of stored rules.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rules)
}

// Clear removes all rules (for testing).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = nil
	s.byID = make(map[string]*Rule)
}
