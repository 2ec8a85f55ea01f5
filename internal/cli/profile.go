package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newProfileCommand(rt *Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the user profile",
	}
	cmd.AddCommand(newProfilePictureCommand(rt))
	return cmd
}

func newProfilePictureCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "picture <file>",
		Short: "Upload a new profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, l, err := rt.signedIn()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			auth := a.Machine.Auth()
			u, err := a.API.UpdateProfilePicture(cmd.Context(), auth, args[0], f)
			if err != nil {
				return fail(a, l, err, "errorUpdatingProfilePic")
			}
			if err := a.Machine.UpdateUser(auth, u); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), l.T("profilePictureUpdatedSuccess"))
			if u.ProfilePictureURL != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), u.ProfilePictureURL)
			}
			return nil
		},
	}
}
