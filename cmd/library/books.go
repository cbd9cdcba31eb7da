package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

func newBooksCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Inspect and edit the catalog",
	}
	cmd.AddCommand(
		newBooksListCommand(state),
		newBooksAddCommand(state),
		newBooksRemoveCommand(state),
		newBooksAddEditionCommand(state),
		newBooksRemoveEditionCommand(state),
	)
	return cmd
}

func newBooksListCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every book with its stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := state.service.Books(cmd.Context())
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Fprintln(state.out, state.styles.Faint.Render("(catalog is empty)"))
				return nil
			}
			printBooks(state, books)
			return nil
		},
	}
}

func newBooksAddCommand(state *app) *cobra.Command {
	var (
		authors  []string
		year     int
		fee      string
		editions []string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a book to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rentalFee, err := decimal.NewFromString(fee)
			if err != nil {
				return fmt.Errorf("%w: rental fee %q", library.ErrInvalidAmount, fee)
			}
			stock, err := parseEditionStock(editions)
			if err != nil {
				return err
			}
			book, err := library.NewBook(args[0], authors, year, stock, rentalFee)
			if err != nil {
				return err
			}
			if err := state.service.AddBook(cmd.Context(), book); err != nil {
				return err
			}
			fmt.Fprintln(state.out, state.styles.Success.Render("Added "+book.DisplayInfo()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&authors, "author", nil, "author name (repeatable)")
	cmd.Flags().IntVar(&year, "year", 0, "publication year")
	cmd.Flags().StringVar(&fee, "fee", "0", "flat rental fee")
	cmd.Flags().StringSliceVar(&editions, "edition", nil, "edition stock as id=count (repeatable)")
	return cmd
}

func newBooksRemoveCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <title>",
		Short: "Remove a book nobody is holding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.service.RemoveBook(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(state.out, state.styles.Success.Render("Removed "+args[0]))
			return nil
		},
	}
}

func newBooksAddEditionCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add-edition <title> <edition>",
		Short: "Put one copy of an edition on the shelf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edition, err := library.NewEditionID(args[1])
			if err != nil {
				return err
			}
			if err := state.service.AddEdition(cmd.Context(), args[0], edition); err != nil {
				return err
			}
			return printBook(cmd, state, args[0])
		},
	}
}

func newBooksRemoveEditionCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-edition <title> <edition>",
		Short: "Take one copy of an edition off the shelf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			edition, err := library.NewEditionID(args[1])
			if err != nil {
				return err
			}
			if err := state.service.RemoveEdition(cmd.Context(), args[0], edition); err != nil {
				return err
			}
			return printBook(cmd, state, args[0])
		},
	}
}

func printBook(cmd *cobra.Command, state *app, title string) error {
	book, err := state.service.Book(cmd.Context(), title)
	if err != nil {
		return err
	}
	printBooks(state, []*library.Book{book})
	return nil
}

func printBooks(state *app, books []*library.Book) {
	fmt.Fprintln(state.out, state.styles.Heading.Render("Books"))
	for _, book := range books {
		fmt.Fprintln(state.out, "  "+book.DisplayInfo())
	}
}

// parseEditionStock reads "id=count" pairs.
func parseEditionStock(pairs []string) (map[library.EditionID]int, error) {
	stock := make(map[library.EditionID]int, len(pairs))
	for _, pair := range pairs {
		rawID, rawCount, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q must look like id=count", library.ErrInvalidStock, pair)
		}
		edition, err := library.NewEditionID(rawID)
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(strings.TrimSpace(rawCount))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", library.ErrInvalidStock, pair)
		}
		stock[edition] = count
	}
	return stock, nil
}
