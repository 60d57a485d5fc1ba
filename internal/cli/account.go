package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/media"
	"github.com/shelfmateapp/shelfmate/internal/profile"
)

func newLoginCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = a.readLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			password, err := a.readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			if err := sess.SignIn(ctx, email, password); err != nil {
				return err
			}
			return done(out(cmd), a.output, "Signed in as "+sess.Profile().DisplayName)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			if email == "" {
				if email, err = a.readLine(cmd, "Email: "); err != nil {
					return err
				}
			}
			if name == "" {
				if name, err = a.readLine(cmd, "Display name: "); err != nil {
					return err
				}
			}
			password, err := a.readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			if err := sess.SignUp(ctx, email, password, name); err != nil {
				return err
			}
			return done(out(cmd), a.output, "Welcome, "+sess.Profile().FirstName())
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			if sess.Status() != domain.SessionSignedIn {
				return done(out(cmd), a.output, "Not signed in")
			}
			if err := a.confirm(cmd, "Sign out?"); err != nil {
				return err
			}
			sess.SignOut(ctx)
			return done(out(cmd), a.output, "Signed out")
		},
	}
}

type whoami struct {
	Profile *domain.UserProfile `json:"profile"`
	Avatar  media.Avatar        `json:"avatar"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			v := whoami{Profile: p, Avatar: media.AvatarPlaceholder(p)}
			return render(out(cmd), a.output, v, func(w io.Writer) error {
				printProfile(w, v)
				return nil
			})
		},
	}
}

func printProfile(w io.Writer, v whoami) {
	fmt.Fprintf(w, "%s <%s>\n", v.Profile.DisplayName, v.Profile.Email)
	fmt.Fprintf(w, "  id:       %s\n", v.Profile.BackendID)
	fmt.Fprintf(w, "  library:  %s\n", v.Profile.LibraryVisibility)
	if v.Profile.Bio != "" {
		fmt.Fprintf(w, "  bio:      %s\n", v.Profile.Bio)
	}
	if v.Avatar.URL != "" {
		fmt.Fprintf(w, "  avatar:   %s\n", v.Avatar.URL)
	} else {
		fmt.Fprintf(w, "  avatar:   %s on %s\n", v.Avatar.Initials, v.Avatar.Color)
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var name, visibility, avatar, bio string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change display name, library visibility, avatar or bio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*profile.Service](a)
			if err != nil {
				return err
			}

			var patch domain.ProfilePatch
			f := cmd.Flags()
			if f.Changed("name") {
				patch.DisplayName = &name
			}
			if f.Changed("visibility") {
				v := domain.LibraryVisibility(visibility)
				patch.LibraryVisibility = &v
			}
			if f.Changed("avatar") {
				patch.AvatarURL = &avatar
			}
			if f.Changed("bio") {
				patch.Bio = &bio
			}

			p, err := svc.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			v := whoami{Profile: p, Avatar: media.AvatarPlaceholder(p)}
			return render(out(cmd), a.output, v, func(w io.Writer) error {
				printProfile(w, v)
				return nil
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&visibility, "visibility", "", "library visibility: public, friends or private")
	update.Flags().StringVar(&avatar, "avatar", "", "avatar image URL (empty clears it)")
	update.Flags().StringVar(&bio, "bio", "", "short bio")

	cmd.AddCommand(update)
	return cmd
}

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your account",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete your account and everything in it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, p, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.confirm(cmd, fmt.Sprintf("Delete the account of %s permanently?", p.Email)); err != nil {
				return err
			}
			if err := sess.DeleteAccount(cmd.Context()); err != nil {
				return err
			}
			return done(out(cmd), a.output, "Account deleted")
		},
	})
	return cmd
}
