package cli

import (
	"fmt"
	"time"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/purchase"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) buyCmd() *cobra.Command {
	var (
		details models.PaymentDetails
		delay   time.Duration
		key     string
	)

	cmd := &cobra.Command{
		Use:   "buy <course-id>",
		Short: "Purchase a course",
		Long: `Purchase a course with a card. The card is only checked for format;
no payment gateway is contacted.`,
		Example: `  fitforge buy c42 --card "4242 4242 4242 4242" --expiry 12/29 --cvv 123`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			courseID := args[0]

			sess, err := a.session()
			if err != nil {
				return err
			}

			user, err := a.courses.CurrentUser(ctx, sess.Token)
			if err != nil {
				return a.fail(err, "Failed to fetch user data")
			}
			if user.HasPurchased(courseID) {
				fmt.Fprintln(a.out, "You already own this course")
				return nil
			}

			flow := purchase.NewFlow(a.api, courseID, user, purchase.Options{
				Delay: delay,
				OnTransition: func(_, to purchase.State) {
					if to == purchase.Processing {
						fmt.Fprintln(a.out, "Processing payment...")
					}
				},
			})
			if err := flow.Begin(sess); err != nil {
				return a.fail(err, "Failed to purchase course")
			}

			if key == "" {
				key = uuid.NewString()
			}

			outcome, err := flow.SubmitPayment(ctx, details, key)
			if err != nil {
				return a.fail(err, "Failed to purchase course")
			}

			fmt.Fprintf(a.out, "Successfully purchased %s!\n", outcome.Receipt.CourseTitle)
			if outcome.Warning != "" {
				fmt.Fprintln(a.out, outcome.Warning)
				return nil
			}
			fmt.Fprintf(a.out, "Remaining balance: %s\n", money(flow.User().Balance))
			return nil
		},
	}

	cmd.Flags().StringVar(&details.CardNumber, "card", "", "Card number, 13 to 19 digits")
	cmd.Flags().StringVar(&details.Expiry, "expiry", "", "Expiry as MM/YY")
	cmd.Flags().StringVar(&details.CVV, "cvv", "", "Three digit CVV")
	cmd.Flags().DurationVar(&delay, "processing-delay", purchase.DefaultDelay, "Simulated processing time")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Reuse a key to retry a purchase safely (default: random)")
	for _, name := range []string{"card", "expiry", "cvv"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
