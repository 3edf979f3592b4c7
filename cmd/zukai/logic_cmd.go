package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hylla/zukai/internal/app"
	"github.com/hylla/zukai/internal/domain"
	"github.com/hylla/zukai/internal/report"
	"github.com/spf13/cobra"
)

// newLogicCommand groups logic model subcommands.
func newLogicCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logic",
		Aliases: []string{"lm"},
		Short:   "Edit the logic model",
	}
	cmd.AddCommand(
		newLogicShowCommand(opts),
		newLogicAddCommand(opts),
		newLogicEditCommand(opts),
		newLogicRemoveCommand(opts),
		newLogicConnectCommand(opts),
		newLogicDisconnectCommand(opts),
		newLogicResetCommand(opts),
		newExportCommand(opts, logicExporter),
		newLogicImportCommand(opts),
	)
	return cmd
}

func newLogicShowCommand(opts *rootOptions) *cobra.Command {
	var md markdownOptions
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the logic model as a summary",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			return md.print(cmd.OutOrStdout(), report.LogicMarkdown(env.logic.Model()))
		}),
	}
	md.bind(cmd)
	return cmd
}

func newLogicAddCommand(opts *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a card to a stage",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			c, err := domain.ParseCategory(category)
			if err != nil {
				return err
			}
			item, err := env.logic.AddItem(cmd.Context(), app.AddItemInput{Text: args[0], Category: c})
			if err != nil {
				return fmt.Errorf("add item: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", item.ID, item.Category, item.Text)
			return err
		}),
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(domain.CategoryInputs), "stage: inputs, activities, outputs, short_outcomes, middle_outcomes, impact")
	return cmd
}

func newLogicEditCommand(opts *rootOptions) *cobra.Command {
	var (
		text     string
		category string
	)
	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change a card's text or stage",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			current, ok := env.logic.Model().Item(args[0])
			if !ok {
				return fmt.Errorf("edit item: %w", domain.ErrItemNotFound)
			}
			in := app.UpdateItemInput{ID: current.ID, Text: current.Text}
			if cmd.Flags().Changed("text") {
				in.Text = text
			}
			if cmd.Flags().Changed("category") {
				c, err := domain.ParseCategory(category)
				if err != nil {
					return err
				}
				in.Category = c
			}
			res, err := env.logic.UpdateItem(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("edit item: %w", err)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", res.Item.ID, res.Item.Category, res.Item.Text)
			if res.RemovedConnections > 0 {
				_, _ = fmt.Fprintf(out, "removed %d arrows\n", res.RemovedConnections)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&text, "text", "", "new card text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new stage")
	return cmd
}

func newLogicRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <item-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a card and its arrows",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			res, err := env.logic.RemoveItem(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("remove item: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %q (%d arrows)\n", res.Item.Text, res.RemovedConnections)
			return err
		}),
	}
}

func newLogicConnectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "connect <source-id> <target-id>",
		Short: "Draw an arrow to a card in the next stage",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			conn, err := env.logic.Connect(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s -> %s\n", conn.ID, conn.Source, conn.Target)
			return err
		}),
	}
}

func newLogicDisconnectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <connection-id>",
		Short: "Delete an arrow",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			conn, err := env.logic.Disconnect(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("disconnect: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", conn.ID)
			return err
		}),
	}
}

func newLogicResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Discard the logic model and start empty",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			env.logic.Reset(cmd.Context())
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "logic model cleared")
			return err
		}),
	}
}

func newLogicImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the logic model with a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withEnv(func(cmd *cobra.Command, args []string, env *runtimeEnv) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := env.logic.ImportJSON(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("import logic model: %w", err)
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "imported %d cards, %d arrows\n", res.Items, res.Connections); err != nil {
				return err
			}
			if res.DroppedConnections > 0 {
				_, err = fmt.Fprintf(out, "dropped %d arrows whose cards fell back to %s\n", res.DroppedConnections, domain.CategoryInputs)
			}
			return err
		}),
	}
}

// exporter is the export surface shared by both diagrams.
type exporter struct {
	name  string
	json  func(*runtimeEnv) ([]byte, error)
	image func(*cobra.Command, *runtimeEnv, domain.ImageFormat) (app.ImageExport, error)
	file  func(*runtimeEnv, string) string
}

var logicExporter = exporter{
	name: "logic model",
	json: func(env *runtimeEnv) ([]byte, error) { return env.logic.ExportJSON() },
	image: func(cmd *cobra.Command, env *runtimeEnv, f domain.ImageFormat) (app.ImageExport, error) {
		return env.logic.ExportImage(cmd.Context(), f)
	},
	file: func(env *runtimeEnv, ext string) string { return env.logic.FileName(ext) },
}

var purposeExporter = exporter{
	name: "purpose model",
	json: func(env *runtimeEnv) ([]byte, error) { return env.purpose.ExportJSON() },
	image: func(cmd *cobra.Command, env *runtimeEnv, f domain.ImageFormat) (app.ImageExport, error) {
		return env.purpose.ExportImage(cmd.Context(), f)
	},
	file: func(env *runtimeEnv, ext string) string { return env.purpose.FileName(ext) },
}

// newExportCommand writes JSON, PNG or SVG for one diagram.
func newExportCommand(opts *rootOptions, ex exporter) *cobra.Command {
	var (
		format string
		out    string
		toClip bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the " + ex.name + " as json, png or svg",
		Args:  cobra.NoArgs,
		RunE: opts.withEnv(func(cmd *cobra.Command, _ []string, env *runtimeEnv) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format == "json" {
				data, err := ex.json(env)
				if err != nil {
					return fmt.Errorf("export %s: %w", ex.name, err)
				}
				if toClip {
					if err := clipboardWriter(string(data)); err != nil {
						return fmt.Errorf("copy %s to clipboard: %w", ex.name, err)
					}
					_, err = fmt.Fprintf(cmd.ErrOrStderr(), "copied %s json (%d bytes)\n", ex.name, len(data))
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(append(data, '\n'))
					return err
				}
				return writeExport(cmd, exportPath(out, ex.file(env, "json")), data)
			}
			if toClip {
				return fmt.Errorf("--clipboard only supports json")
			}
			imageFormat, err := domain.ParseImageFormat(format)
			if err != nil {
				return err
			}
			img, err := ex.image(cmd, env, imageFormat)
			if err != nil {
				return fmt.Errorf("export %s: %w", ex.name, err)
			}
			if img.FellBack {
				env.logger.Warn("image export fell back", "format", img.Format, "reason", img.FallbackReason)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(img.Data)
				return err
			}
			if out == "" {
				out = "."
			}
			return writeExport(cmd, exportPath(out, img.FileName), img.Data)
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, png or svg")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory, - for stdout (json defaults to stdout, images to the current directory)")
	cmd.Flags().BoolVar(&toClip, "clipboard", false, "copy json to the clipboard instead of writing it")
	return cmd
}

// exportPath joins the default file name when out names a directory.
func exportPath(out, defaultName string) string {
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, defaultName)
	}
	return out
}

// writeExport writes data to path and reports it on stdout.
func writeExport(cmd *cobra.Command, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export %q: %w", path, err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(data))
	return err
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file %q: %w", path, err)
	}
	return data, nil
}
