// Package prompt implements the operator prompts of an activation session
// on a terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/manifoldco/promptui"

	"github.com/ziadkadry99/flowactivate/internal/session"
)

// Terminal prompts on the controlling terminal.
type Terminal struct{}

// NewTerminal returns a Terminal prompter.
func NewTerminal() *Terminal {
	return &Terminal{}
}

var _ session.Prompter = (*Terminal)(nil)

// FlowNames asks for semicolon-separated flow API names and keeps asking
// until at least one is given.
func (t *Terminal) FlowNames(ctx context.Context) (string, error) {
	p := promptui.Prompt{
		Label:    "Flow API names (separate with ;)",
		Validate: validateFlowNames,
	}
	raw, err := p.Run()
	if err != nil {
		return "", canceled(err)
	}
	return raw, nil
}

// SelectOrgs shows a filterable multi-select over the given orgs.
func (t *Terminal) SelectOrgs(ctx context.Context, orgs []string) ([]string, error) {
	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Target orgs").
				Description("Space to toggle, / to filter, enter to continue").
				Options(huh.NewOptions(orgs...)...).
				Filterable(true).
				Value(&selected).
				Validate(validateSelection),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return nil, canceled(err)
	}
	return selected, nil
}

// Confirm asks a yes/no question defaulting to yes.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	ok := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, canceled(err)
	}
	return ok, nil
}

func validateFlowNames(s string) error {
	if len(session.ParseFlowNames(s)) == 0 {
		return fmt.Errorf("enter at least one flow API name")
	}
	return nil
}

func validateSelection(s []string) error {
	if len(s) == 0 {
		return fmt.Errorf("select at least one org")
	}
	return nil
}

// canceled maps the prompt libraries' abort errors to session.ErrCanceled.
func canceled(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt),
		errors.Is(err, promptui.ErrEOF),
		errors.Is(err, promptui.ErrAbort),
		errors.Is(err, huh.ErrUserAborted),
		errors.Is(err, context.Canceled):
		return session.ErrCanceled
	}
	return fmt.Errorf("prompt: %w", err)
}
