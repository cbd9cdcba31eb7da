package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/lending/internal/catalogimport"
	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

func newLibCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lib",
		Short: "Create and search the library",
	}
	cmd.AddCommand(newLibCreateCommand(state), newLibSearchCommand(state))
	return cmd
}

func newLibCreateCommand(state *app) *cobra.Command {
	var (
		format   string
		selector string
	)
	cmd := &cobra.Command{
		Use:   "create <catalog-path> <late-fee-percentage>",
		Short: "Create a library from a JSON, CSV or YAML catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawLateFee, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", library.ErrInvalidLateFee, args[1])
			}
			lateFee, err := library.NewLateFeePercentage(rawLateFee)
			if err != nil {
				return err
			}
			options := catalogimport.Options{Selector: selector}
			if format != "" {
				parsed, err := catalogimport.ParseFormat(format)
				if err != nil {
					return err
				}
				options.Format = parsed
			}
			books, err := catalogimport.ReadFile(args[0], options)
			if err != nil {
				return err
			}
			id, err := state.service.CreateLibrary(cmd.Context(), books, lateFee)
			if err != nil {
				return err
			}
			fmt.Fprintln(state.out, state.styles.Success.Render(fmt.Sprintf("Loaded %d book(s) into library %s", len(books), id.String())))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "catalog format: json, csv or yaml (default: from extension)")
	cmd.Flags().StringVar(&selector, "selector", "", "JSONPath expression locating the book list, e.g. $.catalog.books")
	return cmd
}

func newLibSearchCommand(state *app) *cobra.Command {
	var byTitle bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search books by author, or by title with --title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var books []*library.Book
			if byTitle {
				book, found, err := state.service.SearchByTitle(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if found {
					books = append(books, book)
				}
			} else {
				matches, err := state.service.SearchByAuthor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				books = matches
			}
			if len(books) == 0 {
				fmt.Fprintln(state.out, state.styles.Faint.Render("(no matching books)"))
				return nil
			}
			printBooks(state, books)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byTitle, "title", false, "match the query against titles instead of authors")
	return cmd
}
