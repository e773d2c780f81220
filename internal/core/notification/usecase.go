package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"luna.app/internal/core/cycle"
	"luna.app/internal/core/irregularity"
	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

// Config is the slice of configuration the evaluator reads
type Config interface {
	ports.CycleConfigProvider
	ports.NotificationConfigProvider
}

// IrregularityDetector runs the irregularity rules for the daily check
type IrregularityDetector interface {
	Detect(ctx context.Context, cycle *ports.CycleData, asOf time.Time) ([]*ports.IrregularityData, error)
}

type Evaluator struct {
	store    ports.Store
	users    ports.UserDirectory
	userRepo ports.UserRepository
	push     ports.PushGateway
	detector IrregularityDetector
	config   Config
	clock    ports.Clock
	logger   ports.Logger
	metrics  ports.MetricsCollector
}

type EvaluatorDependencies struct {
	Store    ports.Store
	Users    ports.UserDirectory
	UserRepo ports.UserRepository
	Push     ports.PushGateway
	Detector IrregularityDetector
	Config   Config
	Clock    ports.Clock
	Logger   ports.Logger
	Metrics  ports.MetricsCollector
}

func NewEvaluator(deps EvaluatorDependencies) (*Evaluator, error) {
	if deps.Store == nil {
		return nil, errors.NewValidationError("store is required")
	}
	if deps.Users == nil {
		return nil, errors.NewValidationError("user directory is required")
	}
	if deps.UserRepo == nil {
		return nil, errors.NewValidationError("user repository is required")
	}
	if deps.Push == nil {
		return nil, errors.NewValidationError("push gateway is required")
	}
	if deps.Detector == nil {
		return nil, errors.NewValidationError("irregularity detector is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Clock == nil {
		return nil, errors.NewValidationError("clock is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics collector is required")
	}

	return &Evaluator{
		store:    deps.Store,
		users:    deps.Users,
		userRepo: deps.UserRepo,
		push:     deps.Push,
		detector: deps.Detector,
		config:   deps.Config,
		clock:    deps.Clock,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}, nil
}

// NotifyCycleMutation evaluates the user after a committed cycle write
func (e *Evaluator) NotifyCycleMutation(ctx context.Context, userID uint) {
	report := e.Evaluate(ctx, userID, TriggerCycleMutation)
	e.logger.Debug("Notification check completed",
		ports.F("user_id", userID),
		ports.F("request_id", report.RequestID),
		ports.F("success", report.Success),
		ports.F("sent", report.SentCount()))
}

// Evaluate decides which notifications the user should get now and attempts
// each one independently. Failures are reported, never returned.
func (e *Evaluator) Evaluate(ctx context.Context, userID uint, trigger Trigger) Report {
	report := Report{RequestID: uuid.NewString(), Notifications: []Result{}}

	results, message, err := e.evaluate(ctx, userID, trigger)
	if err != nil {
		log := e.logger.Error
		if errors.IsValidationError(err) || errors.IsNotFoundError(err) {
			log = e.logger.Info
		}
		log("Notification evaluation skipped",
			ports.F("user_id", userID),
			ports.F("trigger", trigger.String()),
			ports.F("request_id", report.RequestID),
			ports.F("error", err))
		report.Message = message
		if report.Message == "" {
			report.Message = "notification check failed"
		}
		return report
	}

	report.Success = true
	report.Message = message
	report.Notifications = results
	return report
}

func (e *Evaluator) evaluate(ctx context.Context, userID uint, trigger Trigger) ([]Result, string, error) {
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, "user not found", err
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	now := e.clock.Now()
	today := dateutil.UTCDate(now)

	latest, err := e.store.Cycles().FindLatest(ctx, user.ID)
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, "", fmt.Errorf("find latest cycle: %w", err)
	}
	if err != nil {
		latest = nil
	}

	if trigger == TriggerDailyCheck && latest != nil && latest.EndDate == nil {
		if _, err := e.detector.Detect(ctx, latest, today); err != nil {
			e.logger.Warn("Daily irregularity detection failed",
				ports.F("user_id", user.ID),
				ports.F("cycle_id", latest.ID),
				ports.F("error", err))
		}
	}

	if strings.TrimSpace(user.FCMToken) == "" {
		return nil, "user has no registered notification token", errors.NewValidationError("missing notification token")
	}
	if latest == nil {
		return []Result{}, "no cycles recorded", nil
	}

	candidates, err := e.collect(ctx, user, latest, trigger, now)
	if err != nil {
		return nil, "", err
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, e.dispatch(ctx, user, c, trigger, now))
	}

	sent := 0
	for _, r := range results {
		if r.Sent {
			sent++
		}
	}
	return results, fmt.Sprintf("%d of %d notifications sent", sent, len(results)), nil
}

// collect builds the candidates in evaluation order: current phase, period
// approaching, period late, then recent irregularities.
func (e *Evaluator) collect(ctx context.Context, user *ports.UserData, latest *ports.CycleData, trigger Trigger, now time.Time) ([]Candidate, error) {
	cfg := e.config.GetNotificationConfig()
	cycleCfg := e.config.GetCycleConfig()
	today := dateutil.UTCDate(now)

	avgCycle := user.AvgCycleLength
	if avgCycle <= 0 {
		avgCycle = cycleCfg.DefaultCycleLength
	}

	var candidates []Candidate

	phaseRows, err := e.store.Phases().FindByCycle(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("find phases: %w", err)
	}
	for _, row := range phaseRows {
		p := cycle.Phase{Type: cycle.PhaseTypeFromString(row.Type), StartDate: row.StartDate, EndDate: row.EndDate}
		if p.Contains(today) {
			candidates = append(candidates, PhaseUpdate{
				Phase:      p.Type,
				DayOfPhase: dateutil.DayDifference(p.StartDate, today) + 1,
			})
			break
		}
	}

	expectedNext := dateutil.AddDays(latest.StartDate, avgCycle)
	daysUntil := dateutil.DayDifference(today, expectedNext)
	if daysUntil > 0 && daysUntil < cfg.ApproachingHorizonDays {
		candidates = append(candidates, PeriodApproaching{DaysUntil: daysUntil, ExpectedStart: expectedNext})
	}

	if latest.EndDate == nil {
		if daysLate := -daysUntil; daysLate >= cfg.LateThresholdDays {
			candidates = append(candidates, PeriodLate{DaysLate: daysLate, ExpectedStart: expectedNext})
		}
	}

	window := cfg.MutationIrregularityWindow
	if trigger == TriggerDailyCheck {
		window = cfg.DailyIrregularityWindow
	}
	recent, err := e.store.Irregularities().FindRecentByUser(ctx, user.ID, now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("find recent irregularities: %w", err)
	}
	for _, row := range recent {
		alert := IrregularityAlert{Type: irregularity.TypeFromString(row.Type), CycleID: row.CycleID}
		if c, err := e.store.Cycles().FindByID(ctx, row.CycleID); err == nil {
			start := c.StartDate
			alert.CycleStartDate = &start
		}
		candidates = append(candidates, alert)
	}

	return candidates, nil
}

func (e *Evaluator) dispatch(ctx context.Context, user *ports.UserData, c Candidate, trigger Trigger, now time.Time) Result {
	msg := c.Message()
	result := Result{Kind: c.Kind(), Title: msg.Title, Body: msg.Body}

	duplicate, err := e.isDuplicate(ctx, user.ID, c, msg, trigger, now)
	if err != nil {
		result.Error = err.Error()
		e.metrics.RecordNotification(ctx, c.Kind().String(), false)
		return result
	}
	if duplicate {
		result.Skipped = true
		e.logger.Debug("Skipping duplicate notification",
			ports.F("user_id", user.ID),
			ports.F("title", msg.Title))
		return result
	}

	err = e.push.Send(ctx, ports.PushMessage{Token: user.FCMToken, Title: msg.Title, Body: msg.Body})
	e.metrics.RecordNotification(ctx, c.Kind().String(), err == nil)
	if err != nil {
		result.Error = err.Error()
		e.logger.Warn("Push notification failed",
			ports.F("user_id", user.ID),
			ports.F("type", c.Kind().String()),
			ports.F("error", err))
		return result
	}
	result.Sent = true

	logged := &ports.NotificationData{
		UserID:    user.ID,
		Title:     msg.Title,
		Body:      msg.Body,
		DeviceID:  user.FCMToken,
		CreatedAt: now,
	}
	if err := e.store.Notifications().Create(ctx, logged); err != nil {
		e.logger.Error("Failed to log sent notification",
			ports.F("user_id", user.ID),
			ports.F("error", err))
	}

	return result
}

// isDuplicate applies the per-variant dedupe rule. Irregularity alerts are
// matched on body during the daily check and never deduped after a cycle
// mutation; every other variant is matched on title.
func (e *Evaluator) isDuplicate(ctx context.Context, userID uint, c Candidate, msg Message, trigger Trigger, now time.Time) (bool, error) {
	cfg := e.config.GetNotificationConfig()

	var err error
	switch c.Kind() {
	case KindIrregularity:
		if trigger != TriggerDailyCheck {
			return false, nil
		}
		_, err = e.store.Notifications().FindRecentByBody(ctx, userID, msg.Body, now.Add(-cfg.DailyIrregularityWindow))
	default:
		_, err = e.store.Notifications().FindRecent(ctx, userID, msg.Title, now.Add(-cfg.DedupeWindow))
	}

	switch {
	case err == nil:
		return true, nil
	case errors.IsNotFoundError(err):
		return false, nil
	default:
		return false, fmt.Errorf("check notification log: %w", err)
	}
}

// DailyCheckAll evaluates every user with a registered token
func (e *Evaluator) DailyCheckAll(ctx context.Context) (DailySummary, error) {
	users, err := e.userRepo.ListWithToken(ctx)
	if err != nil {
		return DailySummary{}, fmt.Errorf("list users with token: %w", err)
	}

	summary := DailySummary{Users: len(users)}
	for _, u := range users {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		report := e.Evaluate(ctx, u.ID, TriggerDailyCheck)
		if !report.Success {
			summary.Failed++
			continue
		}
		summary.Sent += report.SentCount()
	}

	e.logger.Info("Daily notification check completed",
		ports.F("users", summary.Users),
		ports.F("sent", summary.Sent),
		ports.F("failed", summary.Failed))

	return summary, nil
}

// List returns the user's notification log newest first
func (e *Evaluator) List(ctx context.Context, userID uint, page, limit int) (*ListResult, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, total, err := e.store.Notifications().ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	result := &ListResult{
		Notifications: make([]*Notification, 0, len(rows)),
		Total:         total,
		Page:          page,
		Limit:         limit,
	}
	for _, row := range rows {
		result.Notifications = append(result.Notifications, fromNotificationData(row))
	}
	return result, nil
}

// MarkAllRead flags every notification of the user as read
func (e *Evaluator) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, errors.NewValidationError("user id is required")
	}

	count, err := e.store.Notifications().MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return count, nil
}
