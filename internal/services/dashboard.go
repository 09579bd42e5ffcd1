package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stravadash/clients/strava"
	"stravadash/internal/models"
)

var ErrNoToken = errors.New("no strava access token")

type StravaRepository interface {
	GetAthlete(context.Context) (strava.Athlete, error)
	GetActivities(context.Context, *strava.ActivityListOptions) ([]strava.Activity, error)
	GetZones(context.Context) (strava.ZoneSet, error)
}

// RepositoryFactory builds a repository that acts on behalf of token.
type RepositoryFactory func(ctx context.Context, token strava.Token) StravaRepository

// StravaClients returns a factory for real API clients rooted at baseURL
// (the public API when empty).
func StravaClients(baseURL string) RepositoryFactory {
	return func(ctx context.Context, token strava.Token) StravaRepository {
		return strava.NewClient(ctx, token.AccessToken).WithBaseURL(baseURL)
	}
}

type DashboardOptions struct {
	PerPage      int
	Pages        int
	RecentLimit  int
	WeeklyGoalKm float64
}

func DefaultDashboardOptions() DashboardOptions {
	return DashboardOptions{
		PerPage:      50,
		Pages:        2,
		RecentLimit:  10,
		WeeklyGoalKm: DefaultWeeklyGoalKm,
	}
}

type DashboardService struct {
	newRepo RepositoryFactory
	opts    DashboardOptions
	now     func() time.Time
}

func NewDashboardService(newRepo RepositoryFactory, opts DashboardOptions) *DashboardService {
	def := DefaultDashboardOptions()
	if opts.PerPage <= 0 {
		opts.PerPage = def.PerPage
	}
	if opts.Pages <= 0 {
		opts.Pages = def.Pages
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = def.RecentLimit
	}
	if opts.WeeklyGoalKm <= 0 {
		opts.WeeklyGoalKm = def.WeeklyGoalKm
	}
	return &DashboardService{newRepo: newRepo, opts: opts, now: time.Now}
}

func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Build fetches the profile, activity pages and zones in that order on behalf
// of token. The first failing call stops the build.
func (s *DashboardService) Build(ctx context.Context, token strava.Token) (models.Dashboard, error) {
	if token.AccessToken == "" {
		return models.Dashboard{}, ErrNoToken
	}
	repo := s.newRepo(ctx, token)

	athlete, err := repo.GetAthlete(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("error fetching profile: %w", err)
	}

	activities, err := s.fetchActivities(ctx, repo)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("error fetching activities: %w", err)
	}

	zones, err := repo.GetZones(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("error fetching zones: %w", err)
	}

	return s.shape(athlete, activities, zones), nil
}

func (s *DashboardService) fetchActivities(ctx context.Context, repo StravaRepository) ([]strava.Activity, error) {
	all := make([]strava.Activity, 0, s.opts.PerPage*s.opts.Pages)
	for page := 1; page <= s.opts.Pages; page++ {
		acts, err := repo.GetActivities(ctx, &strava.ActivityListOptions{
			Page:    page,
			PerPage: s.opts.PerPage,
		})
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(acts) == 0 {
			break
		}
		all = append(all, acts...)
	}
	slog.Info("fetched activities", "count", len(all))
	return all, nil
}

func (s *DashboardService) shape(athlete strava.Athlete, activities []strava.Activity, zones strava.ZoneSet) models.Dashboard {
	d := models.Dashboard{
		Profile:         ProfileFrom(athlete),
		TotalActivities: len(activities),
		Recent:          make([]models.ActivityRow, 0),
		PowerZones:      make([]models.PowerZoneRow, 0),
		HeartRateZones:  make([]models.HeartRateZoneRow, 0),
		GeneratedAt:     s.now(),
	}
	if len(activities) == 0 {
		d.Weekly = models.WeeklyGoal{GoalKm: s.opts.WeeklyGoalKm}
		return d
	}

	d.Latest = LatestActivityRow(activities)
	d.Weekly = WeeklyProgress(activities, d.GeneratedAt, s.opts.WeeklyGoalKm)
	d.Recent = RecentActivityRows(activities, s.opts.RecentLimit)
	d.PowerZones = PowerZoneRows(zones)
	d.HeartRateZones = HeartRateZoneRows(zones)
	return d
}
