package main

import (
	"errors"
	"fmt"

	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/report"
	"github.com/spf13/cobra"
)

// newPurposeCommand groups purpose model subcommands.
func newPurposeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "purpose",
		Aliases: []string{"pm"},
		Short:   "Edit the purpose model",
	}
	cmd.AddCommand(
		newPurposeShowCommand(opts),
		newPurposeModeCommand(opts),
		newPurposeTimelineCommand(opts),
		newPurposeEditCommand(opts),
		newComparisonCommand(opts),
		newStakeholderCommand(opts),
		newPurposeResetCommand(opts),
		newExportCommand(opts, purposeExporter),
		newPurposeImportCommand(opts),
	)
	return cmd
}

func newPurposeShowCommand(opts *rootOptions) *cobra.Command {
	var md markdownOptions
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every partition of the purpose model",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			return md.print(cmd.OutOrStdout(), report.PurposeMarkdown(env.purpose.Model()))
		}),
	}
	md.bind(cmd)
	return cmd
}

func newPurposeModeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "mode <single|timeline|comparison>",
		Short:     "Switch the active mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ModeSingle), string(domain.ModeTimeline), string(domain.ModeComparison)},
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			mode, err := domain.ParseMode(args[0])
			if err != nil {
				return err
			}
			if err := env.purpose.SetMode(cmd.Context(), mode); err != nil {
				return fmt.Errorf("set mode: %w", err)
			}
			return printCaption(cmd, env)
		}),
	}
}

func newPurposeTimelineCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "timeline <past|current|near-future|future>",
		Short:     "Select the timeline slot",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.SlotPast), string(domain.SlotCurrent), string(domain.SlotNearFuture), string(domain.SlotFuture)},
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			slot, err := domain.ParseTimelineSlot(args[0])
			if err != nil {
				return err
			}
			if err := env.purpose.SelectTimeline(cmd.Context(), slot); err != nil {
				return fmt.Errorf("select timeline slot: %w", err)
			}
			return printCaption(cmd, env)
		}),
	}
}

func newPurposeEditCommand(opts *rootOptions) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:     "purpose",
		Aliases: []string{"set"},
		Short:   "Edit the active purpose title or description",
		Args:    cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			var in app.UpdatePurposeInput
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if in.Title == nil && in.Description == nil {
				return errors.New("set --title or --description")
			}
			p, err := env.purpose.UpdatePurpose(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("update purpose: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Title, p.Description)
			return err
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "purpose title")
	cmd.Flags().StringVar(&description, "description", "", "purpose description")
	return cmd
}

func newComparisonCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comparison",
		Short: "Manage named comparison partitions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add and select a comparison",
			Args:  cobra.ExactArgs(1),
			RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
				name, err := env.purpose.AddComparison(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("add comparison: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added comparison %q\n", name)
				return err
			}),
		},
		&cobra.Command{
			Use:     "rm <name>",
			Aliases: []string{"remove"},
			Short:   "Remove a comparison",
			Args:    cobra.ExactArgs(1),
			RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
				if err := env.purpose.RemoveComparison(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("remove comparison: %w", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed comparison %q\n", args[0])
				return err
			}),
		},
		&cobra.Command{
			Use:   "select <name>",
			Short: "Select the active comparison",
			Args:  cobra.ExactArgs(1),
			RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
				if err := env.purpose.SelectComparison(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("select comparison: %w", err)
				}
				return printCaption(cmd, env)
			}),
		},
	)
	return cmd
}

// stakeholderFlags holds the add/edit stakeholder flag values.
type stakeholderFlags struct {
	name, role, goal string
	category, layer  string
}

func (f *stakeholderFlags) bind(cmd *cobra.Command, defaults bool) {
	category, layer := "", ""
	if defaults {
		category, layer = string(domain.StakeholderCompany), string(domain.LayerSupporting)
	}
	cmd.Flags().StringVar(&f.name, "name", "", "stakeholder name")
	cmd.Flags().StringVar(&f.role, "role", "", "stakeholder role")
	cmd.Flags().StringVar(&f.goal, "goal", "", "stakeholder goal")
	cmd.Flags().StringVar(&f.category, "category", category, "company, government, citizen or expert")
	cmd.Flags().StringVar(&f.layer, "layer", layer, "supporting or leading")
}

// patch builds a patch from the flags the user actually set.
func (f *stakeholderFlags) patch(cmd *cobra.Command) (domain.StakeholderPatch, error) {
	var patch domain.StakeholderPatch
	changed := cmd.Flags().Changed
	if changed("name") {
		patch.Name = &f.name
	}
	if changed("role") {
		patch.Role = &f.role
	}
	if changed("goal") {
		patch.Goal = &f.goal
	}
	if changed("category") {
		c, err := domain.ParseStakeholderCategory(f.category)
		if err != nil {
			return patch, err
		}
		patch.Category = &c
	}
	if changed("layer") {
		l, err := domain.ParseLayer(f.layer)
		if err != nil {
			return patch, err
		}
		patch.Layer = &l
	}
	return patch, nil
}

func newStakeholderCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stakeholder",
		Aliases: []string{"sh"},
		Short:   "Manage stakeholders in the active partition",
	}

	var addFlags stakeholderFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a stakeholder",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			category, err := domain.ParseStakeholderCategory(addFlags.category)
			if err != nil {
				return err
			}
			layer, err := domain.ParseLayer(addFlags.layer)
			if err != nil {
				return err
			}
			s, err := env.purpose.AddStakeholder(cmd.Context(), app.AddStakeholderInput{
				Name:     addFlags.name,
				Role:     addFlags.role,
				Goal:     addFlags.goal,
				Category: category,
				Layer:    layer,
			})
			if err != nil {
				return fmt.Errorf("add stakeholder: %w", err)
			}
			return printStakeholder(cmd, s)
		}),
	}
	addFlags.bind(add, true)

	var editFlags stakeholderFlags
	edit := &cobra.Command{
		Use:   "edit <stakeholder-id>",
		Short: "Change stakeholder fields",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			patch, err := editFlags.patch(cmd)
			if err != nil {
				return err
			}
			if patch.Empty() {
				return errors.New("nothing to change: set at least one field flag")
			}
			s, err := env.purpose.UpdateStakeholder(cmd.Context(), args[0], patch)
			if err != nil {
				return fmt.Errorf("update stakeholder: %w", err)
			}
			return printStakeholder(cmd, s)
		}),
	}
	editFlags.bind(edit, false)

	rm := &cobra.Command{
		Use:     "rm <stakeholder-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a stakeholder",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			s, err := env.purpose.RemoveStakeholder(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("remove stakeholder: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", s.Name)
			return err
		}),
	}

	cmd.AddCommand(add, edit, rm)
	return cmd
}

func newPurposeResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Discard the purpose model and start from the defaults",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			env.purpose.Reset(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "purpose model reset")
			return err
		}),
	}
}

func newPurposeImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the purpose model with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			m, err := env.purpose.ImportJSON(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("import purpose model: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported purpose model (mode %s, %d comparisons)\n", m.Mode, len(m.ComparisonNames))
			return err
		}),
	}
}

// printCaption reports the active partition after a selection change.
func printCaption(cmd *cobra.Command, env *runtimeEnv) error {
	m := env.purpose.Model()
	line := "mode " + string(m.Mode)
	if caption := m.Caption(); caption != "" {
		line += ": " + caption
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}

func printStakeholder(cmd *cobra.Command, s domain.Stakeholder) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Role, s.Goal, s.Category, s.Layer)
	return err
}
