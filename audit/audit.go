// Package audit reports where the users and events collections disagree.
//
// Events are written first and the creator's profile second, without a
// transaction, so a failure in between leaves one side out of date. The
// audit only reports; nothing is repaired.
package audit

import (
	"context"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/store"
)

var (
	danglingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sparkbytes_audit_dangling_refs",
		Help: "Event ids listed in a profile that have no event record.",
	})
	orphanGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sparkbytes_audit_orphan_events",
		Help: "Events whose creator's profile doesn't list them.",
	})
	lastRunGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sparkbytes_audit_last_success_timestamp_seconds",
		Help: "Unix time of the last completed audit.",
	})
)

func init() {
	prometheus.MustRegister(danglingGauge, orphanGauge, lastRunGauge)
}

// Ref is a profile entry pointing at an event.
type Ref struct {
	UserID  sparkbytes.UserID  `json:"userId"`
	EventID sparkbytes.EventID `json:"eventId"`
}

// Report is the result of one audit.
type Report struct {
	// Dangling lists profile entries whose event doesn't exist.
	Dangling []Ref `json:"dangling"`
	// Orphans lists events missing from their creator's profile, including
	// events whose creator has no profile at all.
	Orphans []Ref `json:"orphans"`
}

// Clean reports whether both collections agree.
func (r Report) Clean() bool {
	return len(r.Dangling) == 0 && len(r.Orphans) == 0
}

// Auditor compares profiles with events.
type Auditor struct {
	Profiles *store.ProfileStore
	Events   *store.EventRepository
	Logger   *zap.Logger
}

// Run reads both collections and compares them. Results are sorted by user
// then event id.
func (a *Auditor) Run(ctx context.Context) (Report, error) {
	const op errors.Op = "Auditor.Run"

	var report Report

	profiles, err := a.Profiles.List(ctx)
	if err != nil {
		return report, errors.E(op, err)
	}
	events, err := a.Events.List(ctx)
	if err != nil {
		return report, errors.E(op, err)
	}

	byID := make(map[sparkbytes.EventID]sparkbytes.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	owners := make(map[sparkbytes.UserID]sparkbytes.UserProfile, len(profiles))
	for _, p := range profiles {
		owners[p.ID] = p
		for _, id := range p.Events {
			if _, ok := byID[id]; !ok {
				report.Dangling = append(report.Dangling, Ref{p.ID, id})
			}
		}
	}
	for _, e := range events {
		owner, ok := owners[e.CreatorID]
		if !ok || !owner.Owns(e.ID) {
			report.Orphans = append(report.Orphans, Ref{e.CreatorID, e.ID})
		}
	}

	sortRefs(report.Dangling)
	sortRefs(report.Orphans)
	return report, nil
}

func sortRefs(refs []Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].UserID != refs[j].UserID {
			return refs[i].UserID < refs[j].UserID
		}
		return refs[i].EventID < refs[j].EventID
	})
}

func (a *Auditor) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// RunAndReport runs an audit, logs what it found and updates the metrics.
func (a *Auditor) RunAndReport(ctx context.Context) {
	logger := a.logger()

	report, err := a.Run(ctx)
	if err != nil {
		logger.Error("audit failed", zap.Error(err))
		return
	}

	danglingGauge.Set(float64(len(report.Dangling)))
	orphanGauge.Set(float64(len(report.Orphans)))
	lastRunGauge.Set(float64(time.Now().Unix()))

	for _, ref := range report.Dangling {
		logger.Warn("profile lists missing event",
			zap.String("userid", string(ref.UserID)), zap.String("eventid", string(ref.EventID)))
	}
	for _, ref := range report.Orphans {
		logger.Warn("event missing from creator's profile",
			zap.String("userid", string(ref.UserID)), zap.String("eventid", string(ref.EventID)))
	}
	logger.Info("audit finished",
		zap.Int("dangling", len(report.Dangling)), zap.Int("orphans", len(report.Orphans)))
}

// Schedule runs the audit on a cron schedule such as "@hourly" or
// "0 */6 * * *". Call Stop on the result to end it.
func (a *Auditor) Schedule(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.RunAndReport(ctx)
	})
	if err != nil {
		return nil, errors.E(errors.Op("Auditor.Schedule"), errors.Invalid, err)
	}
	c.Start()
	return c, nil
}
