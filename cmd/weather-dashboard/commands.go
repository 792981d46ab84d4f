package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobby-s-dev/weather-dashboard/internal/geo"
	"github.com/bobby-s-dev/weather-dashboard/internal/view"
)

// errActionFailed signals that the failure was already rendered.
var errActionFailed = errors.New("action failed")

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "weather-dashboard",
		Short:         "Query current weather, forecasts and saved weather history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api-url", "", "weather backend base URL (overrides WEATHER_API_BASE_URL)")

	root.AddCommand(
		newServeCommand(),
		newWeatherCommand(),
		newHereCommand(),
		newVideoCommand(),
		newHistoryCommand(),
		newSaveCommand(),
		newUpdateCommand(),
		newDeleteCommand(),
		newExportCommand(),
	)
	return root
}

// runAction wires the app, runs one controller action and prints the view.
func runAction(cmd *cobra.Command, action func(ctx context.Context, a *app)) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	action(cmd.Context(), a)

	s := a.controller.State()
	if err := view.Render(cmd.OutOrStdout(), s); err != nil {
		return err
	}
	if s.Error != "" {
		return errActionFailed
	}
	return nil
}

func newWeatherCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <location>",
		Short: "Show current weather and the 5-day forecast for a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				a.controller.SetLocation(strings.Join(args, " "))
				a.controller.FetchWeather(ctx)
			})
		},
	}
}

func newHereCommand() *cobra.Command {
	var lat, lon string
	cmd := &cobra.Command{
		Use:   "here",
		Short: "Show weather for the device position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				locator := a.locator
				if lat != "" || lon != "" {
					static, err := geo.ParseStatic(lat, lon)
					if err != nil {
						locator = geo.Unavailable{}
					} else {
						locator = static
					}
				}
				a.controller.FetchWeatherForPosition(ctx, locator)
			})
		},
	}
	cmd.Flags().StringVar(&lat, "lat", "", "latitude, overrides the configured position source")
	cmd.Flags().StringVar(&lon, "lon", "", "longitude, overrides the configured position source")
	return cmd
}

func newVideoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "video <location>",
		Short: "Show a weather-related video for a location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				a.controller.SetLocation(strings.Join(args, " "))
				a.controller.FetchVideo(ctx)
			})
		},
	}
}

func newHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List saved weather queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				a.controller.RefreshHistory(ctx)
			})
		},
	}
}

func addDateFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVar(start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(end, "end", "", "end date (YYYY-MM-DD)")
}

func newSaveCommand() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "save <location>",
		Short: "Save a weather query for a date range",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				a.controller.SetLocation(strings.Join(args, " "))
				a.controller.SetDateRange(start, end)
				a.controller.Save(ctx)
			})
		},
	}
	addDateFlags(cmd, &start, &end)
	return cmd
}

func newUpdateCommand() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "update <id> <location>",
		Short: "Update a saved weather query",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				a.controller.SetLocation(strings.Join(args[1:], " "))
				a.controller.SetDateRange(start, end)
				a.controller.Update(ctx, args[0])
			})
		},
	}
	addDateFlags(cmd, &start, &end)
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved weather query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, func(ctx context.Context, a *app) {
				a.controller.Delete(ctx, args[0])
			})
		},
	}
}

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the CSV export of saved weather queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			payload, ok := a.controller.Export(cmd.Context())
			if !ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", a.controller.State().Error)
				return errActionFailed
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), payload)
			return err
		},
	}
}
