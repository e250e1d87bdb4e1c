package crawl

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageparse/crawler/internal/backend"
)

// Session coordinates one page lifecycle: load, extract, release. It owns
// its Record and PageInfo; the backend handle is either the instance's own
// (WithHandle) or the one shared through a Provider.
//
// Every backend fault is contained at the operation that hit it and reported
// through the return value plus a log line; no public method returns an
// error or panics for expected backend faults.
type Session struct {
	id       string
	logger   *zap.Logger
	provider *Provider
	handle   backend.Handle
	routines []Routine
	data     Record
	page     PageInfo
}

// Option configures a Session at construction.
type Option func(*Session)

// WithRoutines sets the session's default extraction routine set.
func WithRoutines(routines ...Routine) Option {
	return func(s *Session) {
		s.routines = Routines(routines...)
	}
}

// WithHandle gives the session its own backend handle. It takes precedence
// over any provider-scoped handle, and its lifetime is the caller's problem.
func WithHandle(h backend.Handle) Option {
	return func(s *Session) {
		s.handle = h
	}
}

// WithProvider points the session at a shared handle provider.
func WithProvider(p *Provider) Option {
	return func(s *Session) {
		s.provider = p
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// New constructs a Session and ensures a backend handle exists before any
// navigation: the instance handle wins, otherwise the provider's shared
// handle is built at most once. A session with neither stays constructible;
// its operations report failure against the missing handle.
func New(opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		logger: zap.L(),
		data:   Record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", s.id))
	if s.handle == nil {
		s.provider.Ensure()
	}
	return s
}

// currentHandle resolves the handle for an operation: the instance handle
// wins, then the provider's shared slot. Resolution is dynamic so a session
// constructed while the backend was unreachable picks up a handle once a
// later Ensure succeeds.
func (s *Session) currentHandle() backend.Handle {
	if s.handle != nil {
		return s.handle
	}
	return s.provider.Ensure()
}

// Visit constructs a Session and immediately runs the full
// load/parse/close cycle against url. Backend faults never escape; the
// returned bool carries the cycle outcome and the session carries whatever
// was extracted.
func Visit(ctx context.Context, url string, opts ...Option) (*Session, bool) {
	s := New(opts...)
	return s, s.Run(ctx, url)
}

// ID returns the session identifier used in log lines.
func (s *Session) ID() string {
	return s.id
}

// Data returns the record extracted from the current page.
func (s *Session) Data() Record {
	return s.data
}

// Page returns metadata about the current page.
func (s *Session) Page() PageInfo {
	return s.page
}

// Load opens url in the backend. The record and page context are reset
// first in every case, so a session never carries data over from a previous
// load. Returns false on any backend fault, including a missing handle.
func (s *Session) Load(ctx context.Context, url string) bool {
	s.data = Record{}
	s.page = PageInfo{URL: url}

	if err := s.navigate(ctx, url); err != nil {
		s.logger.Warn("[FAIL] load page", zap.String("url", url))
		s.logger.Info("load failure detail", zap.Error(err))
		TotalLoadFailures.Inc()
		return false
	}
	s.logger.Info("[OK] load page", zap.String("url", url))
	TotalLoads.Inc()
	return true
}

func (s *Session) navigate(ctx context.Context, url string) error {
	h := s.currentHandle()
	if err := backend.Guard("navigate", h); err != nil {
		return err
	}
	return h.Navigate(ctx, url)
}

// Parse runs the given routines (default: the session's registered set)
// against the current page. Each routine is isolated: a declared failure or
// a backend fault fails that routine alone and the rest still run. Returns
// the number of failed routines; 0 means full success.
func (s *Session) Parse(ctx context.Context, routines ...Routine) int {
	set := routines
	if len(set) == 0 {
		set = s.routines
	}

	failed := 0
	for _, routine := range Routines(set...) {
		desc := firstLine(routine.Description)
		if err := s.runRoutine(ctx, routine); err != nil {
			s.logger.Warn("[FAIL] parse routine", zap.String("routine", desc))
			s.logger.Info("routine failure detail", zap.String("routine", desc), zap.Error(err))
			TotalRoutineFailures.Inc()
			failed++
			continue
		}
		s.logger.Info("[OK] parse routine", zap.String("routine", desc))
		TotalRoutineRuns.Inc()
	}
	return failed
}

func (s *Session) runRoutine(ctx context.Context, routine Routine) error {
	if routine.Run == nil {
		return Failure("routine has no run function")
	}
	h := s.currentHandle()
	if err := backend.Guard("find", h); err != nil {
		return err
	}
	return routine.Run(ctx, h, s.data)
}

// Close releases the current page in the backend. The handle itself stays
// usable for a subsequent Load. Returns false on any backend fault.
func (s *Session) Close(ctx context.Context) bool {
	if err := s.closePage(ctx); err != nil {
		s.logger.Warn("[FAIL] close page", zap.String("url", s.page.URL))
		s.logger.Info("close failure detail", zap.Error(err))
		TotalCloseFailures.Inc()
		return false
	}
	s.logger.Info("[OK] close page", zap.String("url", s.page.URL))
	return true
}

func (s *Session) closePage(ctx context.Context) error {
	h := s.currentHandle()
	if err := backend.Guard("close", h); err != nil {
		return err
	}
	return h.Close(ctx)
}

// Run composes Load, Parse and Close in that fixed order. A failed load
// skips the rest and fails the cycle; otherwise the cycle succeeds only when
// every routine and the close succeeded as well.
func (s *Session) Run(ctx context.Context, url string, routines ...Routine) bool {
	if !s.Load(ctx, url) {
		return false
	}
	failed := s.Parse(ctx, routines...)
	closed := s.Close(ctx)
	return failed == 0 && closed
}
