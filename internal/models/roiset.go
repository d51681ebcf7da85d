package models

import "fmt"

// ROISet keeps ROIs in insertion order, addressable by ID. It is not safe for
// concurrent use; the widget only touches it from the UI goroutine.
type ROISet struct {
	order []string
	byID  map[string]ROI
}

func NewROISet() *ROISet {
	return &ROISet{byID: make(map[string]ROI)}
}

// Add stores roi after validating it. An empty ID is not allowed.
func (s *ROISet) Add(roi ROI) error {
	if err := roi.Validate(); err != nil {
		return err
	}
	if roi.ID == "" {
		return &InvalidROIError{Bounds: roi.Bounds, Reason: "missing id"}
	}
	if _, exists := s.byID[roi.ID]; exists {
		return fmt.Errorf("add roi %s: %w", roi.ID, ErrDuplicateROI)
	}
	s.byID[roi.ID] = roi
	s.order = append(s.order, roi.ID)
	return nil
}

// Replace swaps the stored ROI with the same ID after validating it.
func (s *ROISet) Replace(roi ROI) error {
	if _, exists := s.byID[roi.ID]; !exists {
		return fmt.Errorf("replace roi %s: %w", roi.ID, ErrROINotFound)
	}
	if err := roi.Validate(); err != nil {
		return err
	}
	s.byID[roi.ID] = roi
	return nil
}

func (s *ROISet) Remove(id string) error {
	if _, exists := s.byID[id]; !exists {
		return fmt.Errorf("remove roi %s: %w", id, ErrROINotFound)
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *ROISet) Get(id string) (ROI, bool) {
	roi, ok := s.byID[id]
	return roi, ok
}

// All returns a copy in insertion order.
func (s *ROISet) All() []ROI {
	out := make([]ROI, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

func (s *ROISet) Len() int { return len(s.order) }

func (s *ROISet) Clear() {
	s.order = nil
	s.byID = make(map[string]ROI)
}

// HitTest returns the topmost (last added) ROI containing p.
func (s *ROISet) HitTest(p Point) (ROI, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		roi := s.byID[s.order[i]]
		if roi.Contains(p) {
			return roi, true
		}
	}
	return ROI{}, false
}
