// Package app is the service layer: it wires the store, the eligibility
// engine, the discovery ledger, the hotspot aggregator and the location
// providers behind one façade the CLI and the harness both drive.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/geocapsule/internal/capsule"
	"github.com/roach88/geocapsule/internal/engine"
	"github.com/roach88/geocapsule/internal/geo"
	"github.com/roach88/geocapsule/internal/geoloc"
	"github.com/roach88/geocapsule/internal/hotspot"
	"github.com/roach88/geocapsule/internal/ledger"
	"github.com/roach88/geocapsule/internal/store"
)

// Default profile fields for the bootstrap user.
const (
	DefaultUserName  = "Anonymous Explorer"
	DefaultUserEmail = "user@timecapsule.app"
)

// Service exposes the capsule operations over a persistent store.
type Service struct {
	records    *store.Records
	ledger     *ledger.Ledger
	engine     *engine.Engine
	aggregator *hotspot.Aggregator
	provider   geoloc.Provider
	geocoder   geoloc.Geocoder
	clock      engine.TimeSource
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithProvider sets the position provider. Default: no fix available.
func WithProvider(p geoloc.Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithGeocoder sets the reverse geocoder. Default: coordinate labels only.
func WithGeocoder(g geoloc.Geocoder) Option {
	return func(s *Service) {
		s.geocoder = g
	}
}

// WithTimeSource replaces the wall clock for the service and its engine.
func WithTimeSource(ts engine.TimeSource) Option {
	return func(s *Service) {
		s.clock = ts
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithGrid replaces the hotspot grid; used to tune cell size.
func WithGrid(g geo.Grid) Option {
	return func(s *Service) {
		s.aggregator = hotspot.New(g)
	}
}

// New creates a service over the given KV store.
func New(kv store.KV, opts ...Option) *Service {
	records := store.NewRecords(kv)
	led := ledger.New(records)

	s := &Service{
		records:    records,
		ledger:     led,
		aggregator: hotspot.New(geo.NewGrid(geo.DefaultCellDegrees)),
		provider:   geoloc.Static{},
		clock:      engine.WallClock{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = engine.New(records, led,
		engine.WithTimeSource(s.clock),
		engine.WithLogger(s.logger))
	return s
}

// Records returns the typed record access, for callers that need raw reads.
func (s *Service) Records() *store.Records {
	return s.records
}

// Now returns the service's current time.
func (s *Service) Now() time.Time {
	return s.clock.Now()
}

// EnsureUser returns the session user, creating the pseudo-profile on
// first run. The generated id embeds the creation instant so repeat calls
// are stable.
func (s *Service) EnsureUser(ctx context.Context) (capsule.User, error) {
	u, ok, err := s.records.User(ctx)
	if err != nil {
		return capsule.User{}, err
	}
	if ok {
		return u, nil
	}

	u = capsule.User{
		ID:    capsule.NewUserID(s.clock.Now()),
		Name:  DefaultUserName,
		Email: DefaultUserEmail,
	}
	if err := s.records.SaveUser(ctx, u); err != nil {
		return capsule.User{}, err
	}
	s.logger.Info("user created", slog.String("user", u.ID))
	return u, nil
}

// CreateCapsule validates and persists a new capsule.
//
// An empty draft address is resolved through the geocoder, falling back to
// a plain coordinate label. An empty CreatedBy is stamped with the session
// user, bootstrapping one if needed.
func (s *Service) CreateCapsule(ctx context.Context, d capsule.Draft) (capsule.TimeCapsule, error) {
	if d.CreatedBy == "" {
		u, err := s.EnsureUser(ctx)
		if err != nil {
			return capsule.TimeCapsule{}, err
		}
		d.CreatedBy = u.ID
	}
	if d.Location.Address == "" {
		p := geo.Point{Latitude: d.Location.Latitude, Longitude: d.Location.Longitude}
		d.Location.Address = geoloc.Resolve(ctx, s.geocoder, p)
	}

	c, err := capsule.New(d, s.clock.Now())
	if err != nil {
		return capsule.TimeCapsule{}, err
	}

	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return capsule.TimeCapsule{}, err
	}
	capsules = append(capsules, c)
	if err := s.records.SaveCapsules(ctx, capsules); err != nil {
		return capsule.TimeCapsule{}, err
	}

	s.logger.Info("capsule created",
		slog.String("capsule", c.ID),
		slog.Bool("public", c.IsPublic))
	return c, nil
}

// Capsule returns the capsule with the given id.
func (s *Service) Capsule(ctx context.Context, id string) (capsule.TimeCapsule, error) {
	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return capsule.TimeCapsule{}, err
	}
	for _, c := range capsules {
		if c.ID == id {
			return c, nil
		}
	}
	return capsule.TimeCapsule{}, &engine.NotFoundError{CapsuleID: id}
}

// AllCapsules returns every stored capsule in insertion order.
func (s *Service) AllCapsules(ctx context.Context) ([]capsule.TimeCapsule, error) {
	return s.records.Capsules(ctx)
}

// MyCapsules returns the capsules created by the session user.
func (s *Service) MyCapsules(ctx context.Context) ([]capsule.TimeCapsule, error) {
	u, err := s.EnsureUser(ctx)
	if err != nil {
		return nil, err
	}
	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return nil, err
	}

	mine := []capsule.TimeCapsule{}
	for _, c := range capsules {
		if c.CreatedBy == u.ID {
			mine = append(mine, c)
		}
	}
	return mine, nil
}

// DiscoveredCapsules returns the capsules the session user has unlocked,
// in discovery order. Ledger entries whose capsule was deleted are skipped.
func (s *Service) DiscoveredCapsules(ctx context.Context) ([]capsule.TimeCapsule, error) {
	order, err := s.records.Discovered(ctx)
	if err != nil {
		return nil, err
	}
	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]capsule.TimeCapsule, len(capsules))
	for _, c := range capsules {
		byID[c.ID] = c
	}

	found := []capsule.TimeCapsule{}
	for _, id := range order {
		if c, ok := byID[id]; ok {
			found = append(found, c)
		}
	}
	return found, nil
}

// Chains returns the stored memory chains.
func (s *Service) Chains(ctx context.Context) ([]capsule.MemoryChain, error) {
	return s.records.Chains(ctx)
}

// DeleteCapsule removes a capsule and its discovery ledger entry.
func (s *Service) DeleteCapsule(ctx context.Context, id string) error {
	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range capsules {
		if capsules[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &engine.NotFoundError{CapsuleID: id}
	}

	capsules = append(capsules[:idx], capsules[idx+1:]...)
	if err := s.records.SaveCapsules(ctx, capsules); err != nil {
		return err
	}

	ids, err := s.records.Discovered(ctx)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, d := range ids {
		if d != id {
			kept = append(kept, d)
		}
	}
	if len(kept) != len(ids) {
		if err := s.records.SaveDiscovered(ctx, kept); err != nil {
			return err
		}
	}

	s.logger.Info("capsule deleted", slog.String("capsule", id))
	return nil
}

// Unlock attempts to unlock a capsule for the current viewer position.
//
// A position acquisition failure does not abort the attempt: the guards
// run with no position, fail closed on the geofence, and the denial carries
// a POSITION_UNAVAILABLE advisory so callers can tell "you are elsewhere"
// from "we do not know where you are".
func (s *Service) Unlock(ctx context.Context, id, key string) (engine.Decision, error) {
	viewer, advisory := s.currentPosition(ctx)

	d, err := s.engine.Unlock(ctx, id, viewer, key)
	if err != nil {
		return engine.Decision{}, err
	}
	if d.Denied() {
		d.Advisory = advisory
	}
	return d, nil
}

// Hotspots aggregates all capsules into map hotspots for the current
// viewer position. With no position available every hotspot reports
// hasUnlocked false.
func (s *Service) Hotspots(ctx context.Context) ([]capsule.MapHotspot, error) {
	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return nil, err
	}
	viewer, _ := s.currentPosition(ctx)
	return s.aggregator.Aggregate(capsules, viewer, s.clock.Now()), nil
}

// HotspotCapsules resolves a hotspot id back to its capsules.
func (s *Service) HotspotCapsules(ctx context.Context, hotspotID string) ([]capsule.TimeCapsule, error) {
	capsules, err := s.records.Capsules(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregator.Select(capsules, hotspotID), nil
}

// currentPosition asks the provider for a fix. Failure yields a nil viewer
// and the advisory to attach to denials.
func (s *Service) currentPosition(ctx context.Context) (*geo.Point, engine.Advisory) {
	p, err := s.provider.Current(ctx)
	if err != nil {
		s.logger.Warn("position unavailable", slog.Any("error", err))
		return nil, engine.AdvisoryPositionUnavailable
	}
	return &p, engine.AdvisoryNone
}
