package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/shelfmateapp/shelfmate/internal/domain"
	"github.com/shelfmateapp/shelfmate/internal/library"
	"github.com/shelfmateapp/shelfmate/internal/notifications"
	"github.com/shelfmateapp/shelfmate/internal/social"
)

func newFriendsCmd(a *app) *cobra.Command {
	var (
		query     string
		exclusive bool
	)
	cmd := &cobra.Command{
		Use:   "friends",
		Short: "List friends, followers and people you follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*social.Service](a)
			if err != nil {
				return err
			}
			g, err := svc.Load(cmd.Context())
			if err != nil {
				return err
			}
			if query != "" {
				g = social.Filter(g, query)
			}
			followers, following := "Followers", "Following"
			if exclusive {
				g.Followers, g.Following = g.FollowersOnly(), g.FollowingOnly()
				followers, following = "Followers only", "Following only"
			}
			return render(out(cmd), a.output, g, func(w io.Writer) error {
				printUsers(w, "Friends", g.Friends)
				printUsers(w, followers, g.Followers)
				printUsers(w, following, g.Following)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&query, "search", "", "only show users whose name contains this text")
	cmd.Flags().BoolVar(&exclusive, "exclusive", false, "leave friends out of the followers and following lists")
	return cmd
}

func printUsers(w io.Writer, title string, users []domain.UserSummary) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(users))
	for _, u := range users {
		fmt.Fprintf(w, "  %s  %s\n", u.ID, u.DisplayName)
	}
}

func newFollowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "follow <user-id>",
		Short: "Follow a user; following each other makes you friends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, self, err := a.signedIn(ctx)
			if err != nil {
				return err
			}
			svc, err := invoke[*social.Service](a)
			if err != nil {
				return err
			}
			if err := svc.Follow(ctx, args[0]); err != nil {
				return err
			}

			feed, err := invoke[*notifications.Service](a)
			if err != nil {
				return err
			}
			_, err = feed.Notify(ctx, domain.Notification{
				UserID:  args[0],
				Type:    domain.NotificationFollow,
				Message: self.DisplayName + " started following you",
			})
			if err != nil {
				a.log("notifications").Warn("follow notification not sent", "target_id", args[0], "error", err)
			}
			return done(out(cmd), a.output, "Following "+args[0])
		},
	}
}

func newUnfollowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <user-id>",
		Short: "Stop following a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*social.Service](a)
			if err != nil {
				return err
			}
			if err := svc.Unfollow(cmd.Context(), args[0]); err != nil {
				return err
			}
			return done(out(cmd), a.output, "Unfollowed "+args[0])
		},
	}
}

type openedLibrary struct {
	Owner *domain.UserProfile `json:"owner"`
	State library.State       `json:"library"`
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <user-id>",
		Short: "Open another user's library if their visibility allows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, self, err := a.signedIn(ctx)
			if err != nil {
				return err
			}
			owner, err := a.openLibrary(ctx, args[0])
			if err != nil {
				return err
			}
			screen, release, err := a.loadScreen(ctx, owner.BackendID, owner.BackendID != self.BackendID)
			if err != nil {
				return err
			}
			defer release()

			v := openedLibrary{Owner: owner, State: screen.State()}
			return render(out(cmd), a.output, v, func(w io.Writer) error {
				fmt.Fprintf(w, "%s's library\n\n", owner.FirstName())
				printSections(w, v.State)
				return nil
			})
		},
	}
}

func newNotificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show what your friends have been up to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*notifications.Service](a)
			if err != nil {
				return err
			}
			list, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return render(out(cmd), a.output, list, func(w io.Writer) error {
				fmt.Fprintf(w, "%d unread\n", notifications.UnreadCount(list))
				for _, n := range list {
					mark := " "
					if !n.Read {
						mark = "*"
					}
					fmt.Fprintf(w, "%s %s  %s  %s\n", mark, n.ID, n.CreatedAt.Local().Format(time.DateTime), n.Message)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			svc, err := invoke[*notifications.Service](a)
			if err != nil {
				return err
			}
			if err := svc.MarkRead(cmd.Context(), args[0]); err != nil {
				return err
			}
			return done(out(cmd), a.output, "Marked as read")
		},
	})
	return cmd
}
