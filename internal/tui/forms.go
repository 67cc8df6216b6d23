package tui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitkeep/internal/config"
	"github.com/julianstephens/habitkeep/internal/constants"
	"github.com/julianstephens/habitkeep/internal/validation"
)

func targetOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, constants.MaxTargetPerWeek)
	for n := constants.MinTargetPerWeek; n <= constants.MaxTargetPerWeek; n++ {
		opts = append(opts, huh.NewOption(strconv.Itoa(n)+" per week", n))
	}
	return opts
}

// NewHabitForm creates the form used to add or edit a habit.
func NewHabitForm(fm *HabitFormModel, title string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := validation.NormalizeName(s)
					return err
				}),
			huh.NewSelect[int]().
				Title("Weekly target").
				Options(targetOptions()...).
				Value(&fm.Target),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewImportForm asks for a file of comma-separated names and a confirmation,
// since import replaces every habit.
func NewImportForm(fm *ImportFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Import file").
				Description("Comma-separated habit names").
				Value(&fm.Path).
				Validate(func(s string) error {
					path := strings.TrimSpace(s)
					if path == "" {
						return fmt.Errorf("path cannot be empty")
					}
					expanded, err := config.ExpandHome(path)
					if err != nil {
						return err
					}
					if _, err := os.Stat(expanded); err != nil {
						return fmt.Errorf("cannot read %s", path)
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Replace all habits and their history?").
				Affirmative("Replace").
				Negative("Cancel").
				Value(&fm.Confirm),
		),
	).WithTheme(huh.ThemeDracula())
}
