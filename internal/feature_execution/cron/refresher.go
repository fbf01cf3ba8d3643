package cronjob

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/domain"
	"github.com/shnkreddy98/airfold-backend/internal/feature_execution/service"
	projectsvc "github.com/shnkreddy98/airfold-backend/internal/projects/service"
)

// DefaultSchedule refreshes the fallback mirrors every five minutes.
const DefaultSchedule = "0 */5 * * * *"

const refreshTimeout = time.Minute

// Refresher periodically re-reads the remote store for every open session
// and refreshes the fallback mirrors, so that a remote outage serves data
// no staler than the refresh interval.
type Refresher struct {
	schedule    string
	coordinator *service.Coordinator
	directory   *projectsvc.Directory
	limiter     *rate.Limiter
	cron        *cron.Cron
}

// NewRefresher creates a refresher on the given cron schedule (with a
// seconds field, as in "0 */5 * * * *").
func NewRefresher(schedule string, coordinator *service.Coordinator, directory *projectsvc.Directory) *Refresher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Refresher{
		schedule:    schedule,
		coordinator: coordinator,
		directory:   directory,
		limiter:     rate.NewLimiter(rate.Limit(2), 4),
	}
}

// Start registers the cron entry and starts the scheduler.
func (r *Refresher) Start() error {
	c := cron.New(cron.WithSeconds())

	if _, err := c.AddFunc(r.schedule, r.Refresh); err != nil {
		return err
	}

	log.Printf("mirror refresher started (schedule %q)", r.schedule)
	c.Start()
	r.cron = c
	return nil
}

// Stop halts the scheduler. Entries already running are not interrupted.
func (r *Refresher) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// Refresh runs one refresh pass over every open session: the feature
// history per project and the project catalog per distinct owner.
func (r *Refresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	open := r.coordinator.OpenProjects()
	owners := make(map[string]struct{})

	for _, p := range open {
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
		if err := r.coordinator.RefreshSession(ctx, p.ID); err != nil {
			// Busy and closed sessions are expected; real failures are not.
			if !errors.Is(err, domain.ErrSubmissionInFlight) && !errors.Is(err, domain.ErrSessionClosed) {
				log.Printf("mirror refresh of project %s failed: %v", p.ID, err)
			}
			continue
		}
		owners[p.Owner] = struct{}{}
	}

	for owner := range owners {
		if err := r.limiter.Wait(ctx); err != nil {
			return
		}
		// List refreshes the projects_<owner> mirror as a side effect.
		if _, err := r.directory.List(ctx, owner); err != nil {
			log.Printf("catalog refresh for owner %s failed: %v", owner, err)
		}
	}
}
