package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shelfmateapp/shelfmate/internal/di/providers"
	"github.com/shelfmateapp/shelfmate/internal/prefs"
	"github.com/shelfmateapp/shelfmate/internal/router"
	"github.com/shelfmateapp/shelfmate/internal/theme"
)

type themeView struct {
	Preference theme.Preference `json:"preference"`
	OSScheme   string           `json:"osScheme"`
	Dark       bool             `json:"dark"`
	Palette    theme.Palette    `json:"palette"`
}

func currentTheme(h *providers.ThemeHandle) themeView {
	return themeView{
		Preference: h.Preference(),
		OSScheme:   h.OSScheme().String(),
		Dark:       h.IsDark(),
		Palette:    h.Palette(),
	}
}

func (a *app) printTheme(cmd *cobra.Command, h *providers.ThemeHandle) error {
	v := currentTheme(h)
	return render(out(cmd), a.output, v, func(w io.Writer) error {
		mode := "light"
		if v.Dark {
			mode = "dark"
		}
		fmt.Fprintf(w, "Theme: %s (%s, OS prefers %s)\n", v.Preference, mode, v.OSScheme)
		p := v.Palette
		for _, c := range [][2]string{
			{"primary", p.Primary}, {"secondary", p.Secondary}, {"background", p.Background},
			{"card", p.Card}, {"text", p.Text}, {"textSecondary", p.TextSecondary},
			{"label", p.Label}, {"border", p.Border}, {"error", p.Error}, {"success", p.Success},
		} {
			fmt.Fprintf(w, "  %-14s %s\n", c[0], c[1])
		}
		return nil
	})
}

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show the theme preference and the resolved palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := invoke[*providers.ThemeHandle](a)
			if err != nil {
				return err
			}
			return a.printTheme(cmd, h)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cycle",
		Short: "Switch system, light and dark in turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := invoke[*providers.ThemeHandle](a)
			if err != nil {
				return err
			}
			h.Cycle(cmd.Context())
			return a.printTheme(cmd, h)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <system|light|dark>",
		Short:     "Choose the theme preference",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.PreferenceSystem), string(theme.PreferenceLight), string(theme.PreferenceDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := theme.ParsePreference(args[0])
			if err != nil {
				return err
			}
			h, err := invoke[*providers.ThemeHandle](a)
			if err != nil {
				return err
			}
			if err := h.SetPreference(cmd.Context(), p); err != nil {
				return err
			}
			return a.printTheme(cmd, h)
		},
	})
	return cmd
}

func newSettingsCmd(a *app) *cobra.Command {
	show := func(cmd *cobra.Command, store prefs.Store) error {
		settings, err := prefs.LoadSettings(cmd.Context(), store)
		if err != nil {
			a.log("prefs").Warn("some settings could not be read, showing defaults", "error", err)
		}
		return render(out(cmd), a.output, settings, func(w io.Writer) error {
			fmt.Fprintf(w, "notifications       %t\n", settings.NotificationsEnabled)
			fmt.Fprintf(w, "data_saver          %t\n", settings.DataSaver)
			fmt.Fprintf(w, "auto_backup         %t\n", settings.AutoBackup)
			fmt.Fprintf(w, "language            %s (%s)\n", settings.Language, prefs.LanguageName(settings.Language))
			fmt.Fprintf(w, "library_visibility  %s\n", settings.LibraryVisibility)
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show app settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := invoke[*providers.PrefsHandle](a)
			if err != nil {
				return err
			}
			return show(cmd, store)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Change a setting: notifications, data_saver, auto_backup, language or library_visibility",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := invoke[*providers.PrefsHandle](a)
			if err != nil {
				return err
			}
			if err := prefs.SetSetting(cmd.Context(), store, args[0], args[1]); err != nil {
				return err
			}
			return show(cmd, store)
		},
	})
	return cmd
}

type routeView struct {
	Route router.Route `json:"route"`
}

func newRouteCmd(a *app) *cobra.Command {
	var completeOnboarding bool
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Show which screen the app would open with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.session(cmd.Context()); err != nil {
				return err
			}
			r, err := invoke[*router.Router](a)
			if err != nil {
				return err
			}
			route, _ := r.Reresolve()
			if completeOnboarding {
				route = r.CompleteOnboarding(cmd.Context())
			}
			v := routeView{Route: route}
			return render(out(cmd), a.output, v, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, v.Route)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&completeOnboarding, "complete-onboarding", false, "mark onboarding as done first")
	return cmd
}
