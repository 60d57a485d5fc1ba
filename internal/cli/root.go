// Package cli is the terminal front end: one cobra command per screen action.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/shelfmateapp/shelfmate/internal/config"
	"github.com/shelfmateapp/shelfmate/internal/di"
	"github.com/shelfmateapp/shelfmate/internal/di/providers"
	"github.com/shelfmateapp/shelfmate/internal/domain"
	domainerrors "github.com/shelfmateapp/shelfmate/internal/errors"
	"github.com/shelfmateapp/shelfmate/internal/logger"
	"github.com/shelfmateapp/shelfmate/internal/session"
)

// app is shared by every command of one invocation.
type app struct {
	flags    config.Flags
	output   string
	yes      bool
	injector *do.RootScope
	stdin    *bufio.Reader
}

// NewRootCmd builds the command tree. The returned func releases the local stores and must be
// called once the command has run, including when it failed.
func NewRootCmd() (*cobra.Command, func()) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "shelfmate",
		Short: "Catalogue your books, lend them out and see what your friends are reading",
		Long: `Shelfmate keeps your personal library, tracks books you lend to friends and shows
the libraries of the people you follow.

Configuration comes from flags, environment variables and a .env file, in that order.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validOutput(a.output); err != nil {
				return err
			}
			a.injector = di.NewContainer(a.flags)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.shutdown()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.Env, "env", "", "environment: development, staging or production")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.DataPath, "data-path", "", "directory for local preferences (default ~/.shelfmate)")
	pf.StringVar(&a.flags.PrefsBackend, "prefs-backend", "", "preference store engine: badger or sqlite")
	pf.StringVar(&a.flags.BaseURL, "base-url", "", "backend API root, e.g. https://shelf.example.com/api/v1")
	pf.StringVar(&a.flags.EnvFile, "env-file", "", "path of the .env file (default .env)")
	pf.StringVarP(&a.output, "output", "o", outputText, "output format: text, json or yaml")
	pf.BoolVarP(&a.yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newAccountCmd(a),
		newLibraryCmd(a),
		newBookCmd(a),
		newGenresCmd(a),
		newLendCmd(a),
		newStatsCmd(a),
		newFriendsCmd(a),
		newFollowCmd(a),
		newUnfollowCmd(a),
		newOpenCmd(a),
		newNotificationsCmd(a),
		newThemeCmd(a),
		newSettingsCmd(a),
		newRouteCmd(a),
	)
	addRetryHints(cmd)

	return cmd, a.shutdown
}

// addRetryHints tells the user when a command failed for a reason that may clear up on its own.
func addRetryHints(cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		addRetryHints(sub)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil && domainerrors.CodeOf(err).Retryable() {
			return fmt.Errorf("%w (temporary failure, try again)", err)
		}
		return err
	}
}

func (a *app) shutdown() {
	if a.injector == nil {
		return
	}
	if err := a.injector.Shutdown(); err != nil {
		if log, ierr := do.Invoke[*logger.Logger](a.injector); ierr == nil {
			log.Debug("Shutdown error", "error", err)
		}
	}
	a.injector = nil
}

// invoke resolves a service from the container.
func invoke[T any](a *app) (T, error) {
	return do.Invoke[T](a.injector)
}

func (a *app) log(component string) *slog.Logger {
	log, err := invoke[*logger.Logger](a)
	if err != nil {
		return logger.Discard().Logger
	}
	return log.WithComponent(component)
}

func (a *app) session(ctx context.Context) (*session.Container, error) {
	sess, err := invoke[*session.Container](a)
	if err != nil {
		return nil, err
	}
	if err := sess.WaitReady(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// signedIn returns the session and its profile, or an error telling the user to log in.
func (a *app) signedIn(ctx context.Context) (*session.Container, *domain.UserProfile, error) {
	sess, err := a.session(ctx)
	if err != nil {
		return nil, nil, err
	}
	if sess.Status() != domain.SessionSignedIn {
		return nil, nil, fmt.Errorf("%w: run 'shelfmate login' first", session.ErrNotSignedIn)
	}
	return sess, sess.Profile(), nil
}

func (a *app) bus() (*providers.BusHandle, error) {
	return invoke[*providers.BusHandle](a)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
