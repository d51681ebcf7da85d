// Package interaction holds the toolkit-independent state behind the display
// widget's mouse and keyboard handling.
package interaction

import (
	"fmt"
	"strings"

	"cvview/internal/models"
)

type Tool int

const (
	ToolArrow Tool = iota
	ToolRect
	ToolOval
	ToolZoom
	ToolPan
)

var toolNames = map[Tool]string{
	ToolArrow: "arrow",
	ToolRect:  "rect",
	ToolOval:  "oval",
	ToolZoom:  "zoom",
	ToolPan:   "pan",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

func ParseTool(s string) (Tool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for tool, name := range toolNames {
		if name == s {
			return tool, nil
		}
	}
	return ToolArrow, fmt.Errorf("unknown tool %q", s)
}

// Shape returns the ROI shape a drawing tool produces.
func (t Tool) Shape() (models.Shape, bool) {
	switch t {
	case ToolRect:
		return models.ShapeRect, true
	case ToolOval:
		return models.ShapeEllipse, true
	default:
		return models.ShapeRect, false
	}
}

// ToolState tracks the active tool. Holding the pan key switches to ToolPan
// temporarily; releasing it restores the previous tool.
type ToolState struct {
	current Tool
	last    Tool
	tempPan bool
}

func NewToolState(initial Tool) *ToolState {
	return &ToolState{current: initial, last: initial}
}

// Current is the tool that handles input right now.
func (s *ToolState) Current() Tool { return s.current }

// Selected is the tool the user picked, which differs from Current during a
// temporary pan.
func (s *ToolState) Selected() Tool {
	if s.tempPan {
		return s.last
	}
	return s.current
}

// Select picks a tool. During a temporary pan the choice is only recorded and
// takes effect when the pan ends.
func (s *ToolState) Select(t Tool) {
	if s.tempPan {
		s.last = t
		return
	}
	s.current = t
	s.last = t
}

// BeginTemporaryPan reports whether the state changed.
func (s *ToolState) BeginTemporaryPan() bool {
	if s.tempPan {
		return false
	}
	s.last = s.current
	s.current = ToolPan
	s.tempPan = true
	return true
}

// EndTemporaryPan reports whether the state changed.
func (s *ToolState) EndTemporaryPan() bool {
	if !s.tempPan {
		return false
	}
	s.current = s.last
	s.tempPan = false
	return true
}
