package ui

import (
	stderrors "errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// SelectAllOption is the picker entry that stands for every device.
const SelectAllOption = "__all__"

// ErrPickerCancelled is returned when the user backs out of a picker.
var ErrPickerCancelled = stderrors.New("cancelled")

// ResolveRecipients expands the "Select all" entry. Order follows all, and
// duplicates or unknown ids are dropped.
func ResolveRecipients(selected, all []string) []string {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		if s == SelectAllOption {
			return append([]string(nil), all...)
		}
		want[s] = true
	}

	out := make([]string, 0, len(selected))
	for _, id := range all {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

// PickRecipients asks which devices should receive files, then confirms.
// A single device is picked without prompting.
func PickRecipients(agents []string, fileCount int) ([]string, error) {
	if len(agents) == 0 {
		return nil, errors.New(errors.ErrEmptyResult,
			"No devices to send files to",
			"Check that agents are connected with 'ccdash status'")
	}
	if len(agents) == 1 {
		return agents, nil
	}

	options := []huh.Option[string]{huh.NewOption("Select all", SelectAllOption)}
	for _, id := range agents {
		options = append(options, huh.NewOption(id, id))
	}

	var selected []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Send to which devices?").
				Description("space to toggle, enter to continue").
				Options(options...).
				Value(&selected).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one device")
					}
					return nil
				}),
		),
	)
	if err := runForm(form); err != nil {
		return nil, err
	}

	recipients := ResolveRecipients(selected, agents)

	confirmed := true
	confirm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Send %s to %s?", plural(fileCount, "file"), plural(len(recipients), "device"))).
				Value(&confirmed),
		),
	)
	if err := runForm(confirm); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrPickerCancelled
	}
	return recipients, nil
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return ErrPickerCancelled
		}
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Device picker failed",
			"Pass recipients directly with --to")
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
