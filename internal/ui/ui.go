// Package ui renders the console output of an activation session.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ziadkadry99/flowactivate/internal/flow"
)

const banner = `
  __ _                           _   _            _
 / _| | _____      __  __ _  ___| |_(_)_   ____ _| |_ ___
| |_| |/ _ \ \ /\ / / / _' |/ __| __| \ \ / / _' | __/ _ \
|  _| | (_) \ V  V / | (_| | (__| |_| |\ V / (_| | ||  __/
|_| |_|\___/ \_/\_/   \__,_|\___|\__|_| \_/ \__,_|\__\___|
`

var (
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	taglineStyle = lipgloss.NewStyle().Faint(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	orgStyle     = lipgloss.NewStyle().Bold(true)
)

// Banner returns the startup banner.
func Banner(version string) string {
	return bannerStyle.Render(strings.Trim(banner, "\n")) + "\n" +
		taglineStyle.Render(fmt.Sprintf("Activate the latest version of Salesforce flows (%s)", version)) + "\n"
}

// StatusLine renders the result of one flow activation in one org.
func StatusLine(org string, out flow.Outcome) string {
	var mark string
	switch out.Status {
	case flow.StatusActivated:
		mark = okStyle.Render("✔")
	case flow.StatusFlowNotFound, flow.StatusDefinitionNotFound:
		mark = warnStyle.Render("?")
	default:
		mark = failStyle.Render("✘")
	}
	return fmt.Sprintf("%s %s %s", mark, orgStyle.Render("["+org+"]"), out)
}

// SummaryLine reports totals for a finished session.
func SummaryLine(activated, failed, orgs int) string {
	line := fmt.Sprintf("%d activated, %d failed across %d org(s)", activated, failed, orgs)
	if failed > 0 {
		return failStyle.Render(line)
	}
	return okStyle.Render(line)
}

// Info renders an informational message.
func Info(msg string) string {
	return taglineStyle.Render(msg)
}
