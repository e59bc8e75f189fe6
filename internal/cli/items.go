package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/cardboard/internal/model"
	"github.com/Makepad-fr/cardboard/internal/render"
	"github.com/Makepad-fr/cardboard/internal/store"
	"github.com/Makepad-fr/cardboard/internal/ui"
)

// withStore opens the configured backend for the duration of fn.
func (app *App) withStore(ctx context.Context, fn func(st store.Store) error) error {
	b, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func parseSection(arg string) (model.Section, error) {
	s, err := model.ParseSection(arg)
	if err != nil {
		return "", usageError{err: fmt.Errorf("%w (want one of %s)", err, sectionList())}
	}
	return s, nil
}

func parseID(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, usagef("not an item id: %s", arg)
	}
	return n, nil
}

func sectionList() string { return strings.Join(sectionKeys(), ", ") }

// parseSets turns repeated field=value flags into ordered pairs.
func parseSets(sets []string) ([][2]string, error) {
	out := make([][2]string, 0, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, usagef("--set wants field=value, got %q", s)
		}
		out = append(out, [2]string{name, value})
	}
	return out, nil
}

func applySets(it model.Item, sets [][2]string) error {
	for _, kv := range sets {
		if err := model.Set(it, kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) printJSON(v any) error {
	enc := json.NewEncoder(app.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newListCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "ls [section...]",
		Aliases: []string{"list"},
		Short:   "List the cards of one or more sections (default: all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			sections := model.Sections
			if len(args) > 0 {
				sections = nil
				for _, a := range args {
					s, err := parseSection(a)
					if err != nil {
						return err
					}
					sections = append(sections, s)
				}
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				byName := map[model.Section][]model.Item{}
				for _, s := range sections {
					items, err := st.List(cmd.Context(), s)
					if err != nil {
						return fmt.Errorf("load %s: %w", s, err)
					}
					byName[s] = items
				}
				if asJSON {
					return app.printJSON(byName)
				}
				for _, s := range sections {
					ui.Panel(app.stdout, ui.SectionLines(render.NewSectionPage(s, byName[s])))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <section> <id>",
		Short: "Show every field of one item",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := parseSection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				it, err := st.Get(cmd.Context(), section, id)
				if err != nil {
					return err
				}
				if asJSON {
					return app.printJSON(it)
				}
				ui.Panel(app.stdout, ui.ItemLines(it))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the item as JSON")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "add <section> --set field=value...",
		Short: "Create an item",
		Example: strings.TrimSpace(`
  cardboard add todo --set title="Buy milk"
  cardboard add links --set title=Go --set url=https://go.dev
  cardboard add assignments --set subject=Math --set title="Homework 3" --set due=2025-05-01
  cardboard add jobs --set job_title="Backend engineer" --set company=Acme`),
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := parseSection(args[0])
			if err != nil {
				return err
			}
			pairs, err := parseSets(sets)
			if err != nil {
				return err
			}
			draft, err := model.New(section)
			if err != nil {
				return err
			}
			if err := applySets(draft, pairs); err != nil {
				return err
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				it, err := st.Create(cmd.Context(), section, draft)
				if err != nil {
					return err
				}
				ui.OK(app.stdout, fmt.Sprintf("added %s #%d", section, it.Base().ID))
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <section> <id> --set field=value...",
		Short: "Change fields of an item; fields not set keep their value",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := parseSection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			pairs, err := parseSets(sets)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				return usagef("nothing to change: pass at least one --set field=value")
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				current, err := st.Get(cmd.Context(), section, id)
				if err != nil {
					return err
				}
				draft := current.Clone()
				if err := applySets(draft, pairs); err != nil {
					return err
				}
				if _, err := st.Update(cmd.Context(), section, id, draft); err != nil {
					return err
				}
				ui.OK(app.stdout, fmt.Sprintf("updated %s #%d", section, id))
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <section> <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an item",
		Args:    exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := parseSection(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				if err := st.Delete(cmd.Context(), section, id); err != nil {
					return err
				}
				ui.OK(app.stdout, fmt.Sprintf("removed %s #%d", section, id))
				return nil
			})
		},
	}
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"done"},
		Short:   "Flip a task between done and pending",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				it, err := st.Toggle(cmd.Context(), model.SectionTodo, id)
				if err != nil {
					return err
				}
				status := "pending"
				if it.(*model.Todo).Completed {
					status = "done"
				}
				ui.OK(app.stdout, fmt.Sprintf("task #%d is %s", id, status))
				return nil
			})
		},
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", cmd.UseLine())
		}
		return nil
	}
}
