package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/MarkoPoloResearchLab/lending/pkg/library"
)

func newMembersCommand(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage members and their loans",
	}
	cmd.AddCommand(
		newMembersAddCommand(state),
		newMembersRemoveCommand(state),
		newMembersListCommand(state),
		newMembersShowCommand(state),
		newMembersBorrowCommand(state),
		newMembersReturnCommand(state),
		newMembersQuoteCommand(state),
		newMembersDepositCommand(state),
	)
	return cmd
}

func newMembersAddCommand(state *app) *cobra.Command {
	var discount string
	cmd := &cobra.Command{
		Use:   "add <name> <balance>",
		Short: "Enroll a member with an opening balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			balance, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if balance.IsNegative() {
				return fmt.Errorf("%w: opening balance must not be negative", library.ErrInvalidAmount)
			}
			member := library.NewMember(name, balance)
			if discount != "" {
				rawRate, err := decimal.NewFromString(discount)
				if err != nil {
					return fmt.Errorf("%w: %q", library.ErrInvalidDiscountRate, discount)
				}
				rate, err := library.NewDiscountRate(rawRate)
				if err != nil {
					return err
				}
				member = library.NewDiscountedMember(name, balance, rate)
			}
			if err := state.service.AddMember(cmd.Context(), member); err != nil {
				return err
			}
			return printMember(cmd, state, name)
		},
	}
	cmd.Flags().StringVar(&discount, "discount", "", "discount rate percentage; the member pays fee * rate / 100")
	return cmd
}

func newMembersRemoveCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a member without outstanding loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			if err := state.service.RemoveMember(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintln(state.out, state.styles.Success.Render("Removed "+name.String()))
			return nil
		},
	}
}

func newMembersListCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List members and balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := state.service.Members(cmd.Context())
			if err != nil {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintln(state.out, state.styles.Faint.Render("(no members)"))
				return nil
			}
			fmt.Fprintln(state.out, state.styles.Heading.Render("Members"))
			for _, member := range members {
				fmt.Fprintf(state.out, "  %s  %s %s  %s\n",
					member.Name().String(),
					state.styles.Label.Render("Balance:"),
					member.Balance().StringFixed(2),
					state.styles.Faint.Render(fmt.Sprintf("%d borrowed", member.BorrowedCount())),
				)
			}
			return nil
		},
	}
}

func newMembersShowCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a member with borrowed books and due dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			return printMember(cmd, state, name)
		},
	}
}

func newMembersBorrowCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <name> <title> <edition>",
		Short: "Borrow one copy of an edition",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			edition, err := library.NewEditionID(args[2])
			if err != nil {
				return err
			}
			loan, err := state.service.Borrow(cmd.Context(), name, args[1], edition)
			if err != nil {
				return err
			}
			fmt.Fprintln(state.out, state.styles.Success.Render(fmt.Sprintf(
				"%s borrowed %q edition %s, due %s",
				name.String(), loan.Title(), loan.Edition().String(), loan.DueAt().Format(time.RFC3339),
			)))
			return nil
		},
	}
}

func newMembersReturnCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return <name> <title>",
		Short: "Return a book and pay rental fee plus late penalty",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			charge, err := state.service.Return(cmd.Context(), name, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(state.out, state.styles.Success.Render(fmt.Sprintf("%s returned %q", name.String(), args[1])))
			printCharge(state, charge)
			return nil
		},
	}
}

func newMembersQuoteCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <name> <title>",
		Short: "Show what returning a book would cost now",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			charge, err := state.service.Quote(cmd.Context(), name, args[1])
			if err != nil {
				return err
			}
			printCharge(state, charge)
			return nil
		},
	}
}

func newMembersDepositCommand(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <name> <amount>",
		Short: "Credit a member's balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := library.NewMemberName(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if err := state.service.Deposit(cmd.Context(), name, amount); err != nil {
				return err
			}
			return printMember(cmd, state, name)
		},
	}
}

func printMember(cmd *cobra.Command, state *app, name library.MemberName) error {
	member, err := state.service.Member(cmd.Context(), name)
	if err != nil {
		return err
	}
	fmt.Fprintln(state.out, state.styles.Heading.Render(member.Name().String()))
	fmt.Fprintf(state.out, "  %s %s\n", state.styles.Label.Render("Balance:"), member.Balance().StringFixed(2))
	policy := member.FeePolicy()
	if rate, ok := policy.DiscountRate(); ok {
		fmt.Fprintf(state.out, "  %s %s (%s%%)\n", state.styles.Label.Render("Fee policy:"), policy.Kind().String(), rate.Decimal().String())
	} else {
		fmt.Fprintf(state.out, "  %s %s\n", state.styles.Label.Render("Fee policy:"), policy.Kind().String())
	}
	loans := member.Loans()
	if len(loans) == 0 {
		fmt.Fprintln(state.out, "  "+state.styles.Faint.Render("no borrowed books"))
		return nil
	}
	fmt.Fprintln(state.out, "  "+state.styles.Label.Render("Borrowed books:"))
	for _, loan := range loans {
		fmt.Fprintf(state.out, "    %q edition %s due %s\n", loan.Title(), loan.Edition().String(), loan.DueAt().Format(time.RFC3339))
	}
	return nil
}

func printCharge(state *app, charge library.Charge) {
	fmt.Fprintf(state.out, "  %s %s\n", state.styles.Label.Render("Rental fee:"), charge.RentalFee.StringFixed(2))
	fmt.Fprintf(state.out, "  %s %s\n", state.styles.Label.Render("Late penalty:"), charge.LatePenalty.StringFixed(2))
	fmt.Fprintf(state.out, "  %s %s\n", state.styles.Label.Render("Total:"), charge.Total.StringFixed(2))
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", library.ErrInvalidAmount, raw)
	}
	return amount, nil
}
