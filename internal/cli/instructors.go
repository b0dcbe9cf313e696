package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/internal/session"
	"github.com/spf13/cobra"
)

func (a *app) instructorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructors",
		Short: "Manage instructor verification (admin)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List instructors",
			RunE: func(cmd *cobra.Command, args []string) error {
				sess, err := a.adminSession()
				if err != nil {
					return err
				}

				instructors, err := a.admin.ListInstructors(cmd.Context(), sess.Token)
				if err != nil {
					return a.fail(err, "Failed to fetch instructors")
				}
				writeInstructors(a.out, instructors)
				return nil
			},
		},
		a.verifyCmd(),
	)

	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "verify <instructor-id>",
		Short: "Verify an instructor, or revoke with --revoke",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.adminSession()
			if err != nil {
				return err
			}

			instructors, err := a.admin.SetVerified(cmd.Context(), sess.Token, args[0], !revoke)
			if err != nil {
				return a.fail(err, "Failed to update instructor")
			}
			if revoke {
				fmt.Fprintln(a.out, "Instructor unverified")
			} else {
				fmt.Fprintln(a.out, "Instructor verified")
			}
			writeInstructors(a.out, instructors)
			return nil
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "Remove the verification")
	return cmd
}

// adminSession only decides whether to bother the API; the API re-checks the
// token on every call
func (a *app) adminSession() (session.Session, error) {
	sess, err := a.session()
	if err != nil {
		return sess, err
	}
	if sess.Hint != session.HintAdmin {
		return session.Session{}, fmt.Errorf("this command needs an admin session, run `fitforge login --admin`")
	}
	return sess, nil
}

func writeInstructors(out io.Writer, instructors []models.Instructor) {
	if len(instructors) == 0 {
		fmt.Fprintln(out, "No instructors registered")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tVERIFIED")
	for _, i := range instructors {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", i.ID, i.Username, i.Email, i.IsVerified)
	}
	_ = w.Flush()
}
