package cli

import (
	"fmt"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/spf13/cobra"
)

func (a *app) reviewCmd() *cobra.Command {
	var req models.SubmitReviewRequest

	cmd := &cobra.Command{
		Use:     "review <course-id>",
		Short:   "Review a course you own",
		Example: `  fitforge review c42 --rating 5 --comment "Best mobility routine I have tried"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sess, err := a.session()
			if err != nil {
				return err
			}

			user, err := a.courses.CurrentUser(ctx, sess.Token)
			if err != nil {
				return a.fail(err, "Failed to fetch user data")
			}

			result, err := a.reviews.Submit(ctx, sess.Token, args[0], user, &req)
			if err != nil {
				return a.fail(err, "Failed to submit review")
			}

			if result.Warning != "" {
				fmt.Fprintln(a.out, result.Warning)
				return nil
			}
			fmt.Fprintln(a.out, "Review submitted successfully")
			writeReviews(a.out, result.Reviews)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.Rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&req.Comment, "comment", "", "Comment, up to 500 characters")
	_ = cmd.MarkFlagRequired("rating")
	_ = cmd.MarkFlagRequired("comment")

	return cmd
}
