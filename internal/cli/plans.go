package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/store"
)

func NewPlansCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage the plan catalogue",
	}
	cmd.AddCommand(newPlansListCommand(rootOpts))
	cmd.AddCommand(newPlansCreateCommand(rootOpts))
	return cmd
}

func newPlansListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.OpenDB()
			if err != nil {
				return err
			}
			plans, err := services.NewPlanService(store.New(db)).List(cmd.Context())
			if err != nil {
				return err
			}
			return emit(rootOpts, cmd.OutOrStdout(), plans, func(w io.Writer) {
				printPlans(w, plans)
			})
		},
	}
}

func newPlansCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var req dto.PlanRequest
	var name, description, price string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = &name
			req.Description = &description
			if cmd.Flags().Changed("price") {
				req.Price = &price
			}

			db, err := rootOpts.OpenDB()
			if err != nil {
				return err
			}
			plan, err := services.NewPlanService(store.New(db)).Create(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return emit(rootOpts, cmd.OutOrStdout(), plan, func(w io.Writer) {
				fmt.Fprintf(w, "created plan %s (%s)\n", plan.Name, plan.ID)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "plan name")
	cmd.Flags().StringVar(&description, "description", "", "plan description")
	cmd.Flags().StringVar(&price, "price", "", "decimal price, e.g. 9.99")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func printPlans(w io.Writer, plans []models.Plan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range plans {
		price := "-"
		if p.Price != nil {
			price = *p.Price
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, price)
	}
	_ = tw.Flush()
}
