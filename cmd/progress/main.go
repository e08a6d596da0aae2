package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dasbd72/leetcode-progress/announce"
	"github.com/dasbd72/leetcode-progress/api"
	"github.com/dasbd72/leetcode-progress/chart"
	"github.com/dasbd72/leetcode-progress/internal/config"
	"github.com/dasbd72/leetcode-progress/internal/utils"
	"github.com/dasbd72/leetcode-progress/oidcauth"
	"github.com/dasbd72/leetcode-progress/prefs"
	"github.com/dasbd72/leetcode-progress/progress"
	"github.com/dasbd72/leetcode-progress/session"
	"github.com/dasbd72/leetcode-progress/settings"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("client failed")
	}
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefsRepo, err := prefs.NewSQLiteRepo(c.GetPrefsPath())
	if err != nil {
		return errors.Wrap(err, "open preference store")
	}
	defer prefsRepo.Close()

	client, err := api.NewClient(c.GetAPIBaseURL(), api.WithClientLogger(logger))
	if err != nil {
		return errors.Wrap(err, "build api client")
	}

	provider, err := buildProvider(ctx, c, prefsRepo, logger)
	if err != nil {
		return errors.Wrap(err, "build auth provider")
	}

	store, err := session.NewStore(provider, session.WithLogger(logger))
	if err != nil {
		return errors.Wrap(err, "build session store")
	}
	store.Initialize(ctx)

	settingsService, err := settings.NewService(client, store, settings.WithServiceLogger(logger))
	if err != nil {
		return errors.Wrap(err, "build settings service")
	}
	settingsService.Bind(ctx)

	progressService, err := progress.NewService(client, store, prefsRepo,
		progress.WithTimezone(c.GetTimezone()),
		progress.WithServiceLogger(logger))
	if err != nil {
		return errors.Wrap(err, "build progress service")
	}

	announceService, err := announce.NewService(client, prefsRepo, announce.WithServiceLogger(logger))
	if err != nil {
		return errors.Wrap(err, "build announcement service")
	}

	// Let the initial authentication check and dependent fetches settle.
	waitForSession(ctx, store)

	showAnnouncements(ctx, announceService, logger)
	showLeaderboard(ctx, progressService)
	showChart(ctx, progressService, prefsRepo)

	if store.Current().IsAuthenticated {
		s := settingsService.UserSettings()
		fmt.Printf("\nSigned in as %s (leetcode: %s), following %d users\n",
			s.PreferredUsername, s.LeetcodeUsername, len(settingsService.Following()))
	}

	return nil
}

// buildProvider returns the real OIDC provider when an issuer is configured,
// otherwise an anonymous-only stand-in so the client still works logged out.
func buildProvider(ctx context.Context, c config.Config, storage *prefs.SQLiteRepo, logger zerolog.Logger) (session.AuthProvider, error) {
	if c.GetOIDCIssuerURL() == "" {
		logger.Info().Msg("no OIDC issuer configured, running anonymously")
		return anonymousProvider{}, nil
	}
	return oidcauth.New(ctx, oidcauth.Config{
		IssuerURL:             c.GetOIDCIssuerURL(),
		ClientID:              c.GetOIDCClientID(),
		RedirectURL:           c.GetOIDCRedirectURL(),
		PostLogoutRedirectURL: c.GetOIDCPostLogoutRedirectURL(),
		Scopes:                c.GetOIDCScopes(),
	}, storage,
		oidcauth.WithProviderLogger(logger),
		oidcauth.WithRedirect(func(url string) {
			fmt.Printf("Open the following URL to continue:\n%s\n", url)
		}))
}

func waitForSession(ctx context.Context, store *session.Store) {
	sub := store.Observe()
	defer sub.Close()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case snap := <-sub.Snapshots():
			if snap.IsLoading {
				continue
			}
			if !snap.IsAuthenticated || snap.AccessToken != "" {
				return
			}
		case <-deadline:
			return
		case <-ctx.Done():
			return
		}
	}
}

func showAnnouncements(ctx context.Context, service *announce.Service, logger zerolog.Logger) {
	if !service.ShouldFetch() {
		return
	}
	announcements := service.Fetch(ctx)
	if !service.ShouldShow(announcements) {
		return
	}
	for _, a := range announcements {
		fmt.Printf("\n== %s (%s) ==\n%s\n", a.Title, a.Date, a.Content)
	}
	if err := service.MarkShown(announcements); err != nil {
		logger.Warn().Err(err).Msg("failed to record shown announcements")
	}
}

func showLeaderboard(ctx context.Context, service *progress.Service) {
	lb := service.Leaderboard(ctx)
	fmt.Printf("\n%-20s %6s %6s %6s %6s\n", "USER", "EASY", "MED", "HARD", "TOTAL")
	for _, row := range lb.Rows {
		fmt.Printf("%-20s %6d %6d %6d %6d\n", row.Username, row.Easy, row.Medium, row.Hard, row.Total)
	}
}

func showChart(ctx context.Context, service *progress.Service, prefsRepo prefs.Repo) {
	p := prefs.LoadChartPrefs(prefsRepo)
	series := service.ChartData(ctx)
	if len(series.Labels) == 0 {
		fmt.Println("\nNo chart data available")
		return
	}

	fmt.Printf("\nChart (%s, %s, %s): %s\n", p.Interval, p.Mode, p.Difficulty,
		strings.Join(series.Labels, " "))
	for username, dataset := range series.Datasets {
		color := chart.HashColor(username)
		values := make([]string, len(dataset))
		for i, v := range dataset {
			if v == nil {
				values[i] = "-"
			} else {
				values[i] = fmt.Sprintf("%d", utils.Value(v))
			}
		}
		fmt.Printf("%-20s hsl(%d,%d%%,%d%%) %s\n",
			username, color.Hue, color.Saturation, color.Lightness, strings.Join(values, " "))
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
