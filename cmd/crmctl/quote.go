package main

import (
	"fmt"
	"io"
	"time"

	"github.com/Bu1gur/challenger-crm/internal/membership"
	"github.com/Bu1gur/challenger-crm/internal/reference"

	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	var (
		file  string
		start string
	)
	cmd := &cobra.Command{
		Use:   "quote PERIOD",
		Short: "Show end date, session quota and default amount for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := reference.LoadSeed(file)
			if err != nil {
				return err
			}

			day := membership.DateOf(time.Now())
			if start != "" {
				if day, err = membership.ParseDate(start); err != nil {
					return err
				}
			}
			return printQuote(cmd.OutOrStdout(), snap.Periods, args[0], day)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file with the period catalog")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (defaults to today)")
	return cmd
}

func printQuote(w io.Writer, catalog membership.Catalog, periodID string, start membership.Date) error {
	term := membership.CalculateTerm(start, catalog, periodID)
	if !term.Known {
		return fmt.Errorf("unknown period %q", periodID)
	}
	amount, _ := membership.DefaultPaymentAmount(catalog, periodID)
	p, _ := catalog.Lookup(periodID)

	fmt.Fprintf(w, "period:   %s (%s)\n", p.ID, p.Label)
	fmt.Fprintf(w, "start:    %s\n", start)
	fmt.Fprintf(w, "end:      %s\n", term.End)
	fmt.Fprintf(w, "sessions: %d\n", term.Sessions)
	fmt.Fprintf(w, "amount:   %d\n", amount)
	return nil
}
