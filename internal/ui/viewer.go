package ui

import "mt/internal/domain"

// Viewer displays the last run report in an interactive TUI
type Viewer interface {
	View(report *domain.RunReport) error
}
