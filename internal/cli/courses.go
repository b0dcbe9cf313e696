package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/spf13/cobra"
)

func (a *app) coursesCmd() *cobra.Command {
	var filter models.CourseFilter

	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the catalogue",
		Example: `  fitforge courses --level beginner --max-price 50
  fitforge courses -q kettlebell --min-rating 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}

			courses, err := a.courses.Catalogue(cmd.Context(), sess.Token, filter)
			if err != nil {
				return a.fail(err, "Failed to fetch courses")
			}
			if len(courses) == 0 {
				fmt.Fprintln(a.out, "No courses match your filters")
				return nil
			}
			writeCourses(a.out, courses)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter.Search, "query", "q", "", "Search titles and descriptions")
	cmd.Flags().StringSliceVar(&filter.Levels, "level", nil, "beginner, intermediate or advanced; repeatable")
	cmd.Flags().Float64Var(&filter.MinPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&filter.MaxPrice, "max-price", 0, "Maximum price, 0 for no limit")
	cmd.Flags().Float64Var(&filter.MinRating, "min-rating", 0, "Minimum rating")

	return cmd
}

func (a *app) courseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "course <id>",
		Short: "Show a course with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}

			detail, err := a.courses.Detail(cmd.Context(), sess.Token, args[0])
			if err != nil {
				return a.fail(err, "Failed to fetch course")
			}

			c := detail.Course
			fmt.Fprintf(a.out, "%s\n%s\n\n", c.Title, c.Description)
			fmt.Fprintf(a.out, "instructor: %s\n", c.Instructor.Username)
			fmt.Fprintf(a.out, "level:      %s\n", c.Difficulty)
			fmt.Fprintf(a.out, "price:      %s\n", money(c.Price))
			fmt.Fprintf(a.out, "rating:     %.1f\n", c.Rating)

			if detail.Purchased {
				fmt.Fprintln(a.out, "\nVideos:")
				for _, u := range c.VideoURLs {
					fmt.Fprintf(a.out, "  %s\n", u)
				}
			} else {
				fmt.Fprintf(a.out, "\nBuy it with: fitforge buy %s\n", c.ID)
			}

			if detail.ReviewsWarning != "" {
				fmt.Fprintf(a.out, "\n%s\n", detail.ReviewsWarning)
				return nil
			}
			writeReviews(a.out, detail.Reviews)
			return nil
		},
	}
}

func (a *app) myCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "my-courses",
		Short: "List the courses you own",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.session()
			if err != nil {
				return err
			}

			mine, err := a.courses.MyCourses(cmd.Context(), sess.Token)
			if err != nil {
				return a.fail(err, "Failed to fetch your courses")
			}
			if len(mine.Courses) == 0 {
				fmt.Fprintln(a.out, "You have not purchased any courses yet")
				return nil
			}
			writeCourses(a.out, mine.Courses)
			return nil
		},
	}
}

func writeCourses(out io.Writer, courses []models.Course) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tLEVEL\tPRICE\tRATING")
	for _, c := range courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\n", c.ID, c.Title, c.Difficulty, money(c.Price), c.Rating)
	}
	_ = w.Flush()
}

func writeReviews(out io.Writer, reviews []models.Review) {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "\nNo reviews yet")
		return
	}
	fmt.Fprintf(out, "\nReviews (%d):\n", len(reviews))
	for _, r := range reviews {
		fmt.Fprintf(out, "  %s %s  %s\n", strings.Repeat("*", int(r.Rating+0.5)), r.Username, r.Comment)
	}
}

func money(v float64) string {
	if v == 0 {
		return "Free"
	}
	return fmt.Sprintf("$%.2f", v)
}
