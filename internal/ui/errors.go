package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"mt/internal/domain"
	"mt/internal/storage"
)

// FailureViewer displays the failing and skipped results of the last run
// in an interactive TUI
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

// View displays the report. R toggles the resolved marker of the selected
// result and persists it back to the report.
func (fv *FailureViewer) View(report *domain.RunReport) error {
	if len(report.Details) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i := range report.Details {
		list.AddItem(listItemText(report.Details[i], i), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(headerText(report))
	}
	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(report.Details) {
			statsView.SetText(formatResultStats(report.Details[index]))
			detailsView.SetText(formatResultDetails(report.Details[index]))
			detailsView.ScrollToBeginning()
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC, tcell.KeyEsc:
			app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'r', 'R':
				index := list.GetCurrentItem()
				if index >= 0 && index < len(report.Details) {
					report.Details[index].Resolved = !report.Details[index].Resolved
					list.SetItemText(index, listItemText(report.Details[index], index), "")
					updateHeader()
					if err := fv.storage.Save(report); err != nil {
						statsView.SetText(fmt.Sprintf("[red]failed to save: %s[white]", tview.Escape(err.Error())))
					}
				}
				return nil
			case 'q':
				app.Stop()
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})

	updateHeader()
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func outcomeTag(o domain.Outcome) string {
	switch o {
	case domain.OutcomeSkip:
		return "[yellow]S"
	case domain.OutcomeError:
		return "[red]E"
	default:
		return "[red]F"
	}
}

func listItemText(res domain.ReportedResult, index int) string {
	name := res.Description
	if name == "" {
		name = res.Identity
	}
	if res.Resolved {
		return fmt.Sprintf("[gray]✓ %d. %s[white]", index+1, tview.Escape(name))
	}
	return fmt.Sprintf("%s[white] [yellow]%d.[white] %s", outcomeTag(res.Outcome), index+1, tview.Escape(name))
}

func countUnresolved(report *domain.RunReport) int {
	count := 0
	for _, res := range report.Details {
		if !res.Resolved {
			count++
		}
	}
	return count
}

func headerText(report *domain.RunReport) string {
	return fmt.Sprintf(" Seed %d: %d failures, %d errors, %d skips (%d unresolved) | ↑↓ navigate, [yellow]R[white] resolve, → details, ← back, q quit ",
		report.Meta.Seed, report.Meta.Failures, report.Meta.Errors, report.Meta.Skips, countUnresolved(report))
}

func formatResultStats(res domain.ReportedResult) string {
	location := res.Location.String()
	if location == "" {
		location = "unknown location"
	}
	return fmt.Sprintf("[cyan]test:[white] [yellow]%s[white]\n[cyan]at:[white] %s\n",
		tview.Escape(res.Identity), tview.Escape(location))
}

// formatResultDetails formats a result for display using tview color tags
func formatResultDetails(res domain.ReportedResult) string {
	var b strings.Builder

	switch res.Outcome {
	case domain.OutcomeSkip:
		fmt.Fprintf(&b, "[yellow]Skipped: %s[white]\n\n", tview.Escape(res.Description))
	default:
		fmt.Fprintf(&b, "[red]✗ %s[white]\n\n", tview.Escape(res.Description))
	}

	if res.Message != "" {
		label := "Message"
		if res.Outcome == domain.OutcomeSkip {
			label = "Reason"
		}
		fmt.Fprintf(&b, "[yellow]%s:[white]\n%s\n\n", label, tview.Escape(res.Message))
	}

	if len(res.Backtrace) > 0 {
		b.WriteString("[yellow]Backtrace:[white]\n")
		for i, frame := range res.Backtrace {
			if i == 10 {
				fmt.Fprintf(&b, "  [gray]... and %d more frames[white]\n", len(res.Backtrace)-10)
				break
			}
			fmt.Fprintf(&b, "  %s\n", tview.Escape(frame))
		}
		b.WriteString("\n")
	}

	if res.Command != "" {
		fmt.Fprintf(&b, "[yellow]Replay:[white]\n  %s\n", tview.Escape(res.Command))
	}
	return b.String()
}
