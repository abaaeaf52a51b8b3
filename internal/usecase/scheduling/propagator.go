package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/recurrence"
	"club-scheduler/internal/domain/timeslot"
	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

type Scope string

const (
	ScopeSingleOccurrence Scope = "single_occurrence"
	ScopeThisAndFuture    Scope = "this_and_future"
	ScopeEntireSeries     Scope = "entire_series"
)

func (s Scope) String() string {
	return string(s)
}

func (s Scope) IsValid() bool {
	switch s {
	case ScopeSingleOccurrence, ScopeThisAndFuture, ScopeEntireSeries:
		return true
	default:
		return false
	}
}

const ReasonOccurrenceStarted = "cannot modify an occurrence that has already started"

var (
	ErrNothingToUpdate    = errs.New("update carries no changes")
	ErrInvalidScope       = errs.New("invalid update scope")
	ErrPatternNeedsSeries = errs.New("pattern changes require scope this_and_future or entire_series")
	ErrTemplateScope      = errs.New("series template can only be edited with scope entire_series")
)

// SeriesUpdate carries the new values; nil fields keep the current ones.
// Slot is the new time of the target occurrence (or of the series start for
// EntireSeries).
type SeriesUpdate struct {
	Details *activity.Details
	Slot    *timeslot.TimeSlot
	Pattern *recurrence.Pattern
	Scope   Scope
}

type OccurrenceSummary struct {
	ActivityID uuid.UUID
	Number     int
	Slot       timeslot.TimeSlot
}

type RecurrenceUpdateResult struct {
	SeriesID uuid.UUID
	// SplitFrom is set when a this-and-future edit moved the regenerated
	// occurrences into the new series SeriesID.
	SplitFrom *uuid.UUID
	Scope     Scope
	// Applied is false for previews and for updates rejected with Reasons.
	Applied                bool
	Added                  int
	Removed                int
	Retained               int
	Retimed                int
	CancelledRegistrations int
	Promoted               int
	AddedOccurrences       []OccurrenceSummary
	RemovedOccurrences     []OccurrenceSummary
	Reasons                []string
}

// SeriesPropagator applies detail and pattern edits across a recurring
// series. Callers hold the series lock for the whole call.
type SeriesPropagator struct {
	generator *activity.Generator
	capacity  *CapacityManager
	clock     clock.Clock
	logger    *slog.Logger
}

func NewSeriesPropagator(generator *activity.Generator, capacity *CapacityManager, clk clock.Clock, logger *slog.Logger) *SeriesPropagator {
	return &SeriesPropagator{generator: generator, capacity: capacity, clock: clk, logger: logger}
}

type seriesPlan struct {
	root     *activity.Activity
	target   *activity.Activity
	template *activity.Activity
	split    *activity.Activity
	pattern  recurrence.Pattern
	members  []*activity.Activity
	retained []*activity.Activity
	removed  []*activity.Activity
	added    []*activity.Activity
	reasons  []string
}

// ResolveSeries loads the activity and the root of the series it belongs to.
func (p *SeriesPropagator) ResolveSeries(ctx context.Context, store RegistrationStore, activityID uuid.UUID) (root, target *activity.Activity, err error) {
	target, err = store.Activities().Get(ctx, activityID)
	if err != nil {
		return nil, nil, err
	}
	if !target.InSeries() {
		return nil, nil, errs.Mark(activity.ErrNotInSeries, errs.ErrValidation)
	}
	if target.IsSeriesRoot() {
		return target, target, nil
	}
	root, err = store.Activities().Get(ctx, *target.SeriesID())
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to load series root")
	}
	return root, target, nil
}

// PreviewUpdate reports what ApplyUpdate would do without writing anything.
func (p *SeriesPropagator) PreviewUpdate(ctx context.Context, store RegistrationStore, activityID uuid.UUID, update SeriesUpdate) (*RecurrenceUpdateResult, error) {
	if update.Scope == "" {
		update.Scope = ScopeEntireSeries
	}
	plan, err := p.plan(ctx, store, activityID, update)
	if err != nil {
		return nil, err
	}
	return plan.result(update.Scope), nil
}

func (p *SeriesPropagator) ApplyUpdate(ctx context.Context, store RegistrationStore, activityID uuid.UUID, update SeriesUpdate) (*RecurrenceUpdateResult, error) {
	plan, err := p.plan(ctx, store, activityID, update)
	if err != nil {
		return nil, err
	}
	result := plan.result(update.Scope)
	if len(plan.reasons) > 0 {
		return result, nil
	}

	now := p.clock.Now()
	if update.Scope == ScopeSingleOccurrence {
		promoted, err := p.applySingle(ctx, store, plan, update, now)
		if err != nil {
			return nil, err
		}
		result.Promoted = promoted
		result.Applied = true
		return result, nil
	}

	for _, occ := range plan.removed {
		cancelled, err := p.capacity.CancelActiveRegistrations(ctx, store, occ)
		if err != nil {
			return nil, err
		}
		result.CancelledRegistrations += cancelled
		occ.Cancel(now)
		if err := store.Activities().Update(ctx, occ); err != nil {
			return nil, err
		}
	}
	split := plan.split
	if len(plan.added) == 0 {
		split = nil
	}
	if split != nil {
		if err := store.Activities().Create(ctx, split); err != nil {
			return nil, err
		}
	}
	for _, occ := range plan.added {
		if err := store.Activities().Create(ctx, occ); err != nil {
			return nil, err
		}
	}

	// Without a split the edit was anchored at the series start, so the root
	// takes the new values. After a split it only keeps its shortened pattern.
	root := plan.root
	if plan.split == nil {
		if update.Details != nil {
			if err := root.UpdateDetails(*update.Details, 0, now); err != nil {
				return nil, errs.Mark(err, errs.ErrValidation)
			}
		}
		if update.Slot != nil {
			if err := root.Reschedule(*update.Slot, now); err != nil {
				return nil, errs.Mark(err, errs.ErrValidation)
			}
		}
		if update.Pattern != nil {
			if err := root.SetPattern(plan.pattern, now); err != nil {
				return nil, errs.Mark(err, errs.ErrValidation)
			}
		}
	}
	if err := store.Activities().Update(ctx, root); err != nil {
		return nil, err
	}

	result.Applied = true
	if split != nil {
		rootID := root.ID()
		result.SeriesID = split.ID()
		result.SplitFrom = &rootID
		p.logger.InfoContext(ctx, "series split",
			"series_id", rootID,
			"new_series_id", split.ID(),
			"first_occurrence", split.StartNumber())
	}
	p.logger.InfoContext(ctx, "series regenerated",
		"series_id", root.ID(),
		"scope", update.Scope,
		"added", result.Added,
		"removed", result.Removed,
		"retained", result.Retained,
		"cancelled_registrations", result.CancelledRegistrations)
	return result, nil
}

func (p *SeriesPropagator) plan(ctx context.Context, store RegistrationStore, activityID uuid.UUID, update SeriesUpdate) (*seriesPlan, error) {
	if !update.Scope.IsValid() {
		return nil, errs.Mark(errs.Wrapf(ErrInvalidScope, "scope %q", update.Scope), errs.ErrValidation)
	}
	if update.Details == nil && update.Slot == nil && update.Pattern == nil {
		return nil, errs.Mark(ErrNothingToUpdate, errs.ErrValidation)
	}
	if update.Details != nil {
		if err := update.Details.Validate(); err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
	}
	if update.Pattern != nil {
		if err := update.Pattern.Validate(); err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
		if !update.Pattern.IsRecurring() {
			return nil, errs.Mark(recurrence.ErrNotRecurring, errs.ErrValidation)
		}
	}

	root, target, err := p.ResolveSeries(ctx, store, activityID)
	if err != nil {
		return nil, err
	}
	members, err := store.Activities().ListSeries(ctx, root.ID())
	if err != nil {
		return nil, err
	}

	plan := &seriesPlan{root: root, target: target, members: members}
	if rp := root.Pattern(); rp != nil {
		plan.pattern = *rp
	}
	if update.Pattern != nil {
		plan.pattern = update.Pattern.Clone()
	}

	switch update.Scope {
	case ScopeSingleOccurrence:
		err = p.planSingle(ctx, store, plan, update)
	case ScopeThisAndFuture:
		if target.IsSeriesRoot() || target.OccurrenceNumber() <= root.StartNumber() {
			err = p.planEntire(plan, update)
		} else {
			err = p.planTail(plan, update)
		}
	case ScopeEntireSeries:
		err = p.planEntire(plan, update)
	}
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *SeriesPropagator) planSingle(ctx context.Context, store RegistrationStore, plan *seriesPlan, update SeriesUpdate) error {
	if plan.target.IsSeriesRoot() {
		return errs.Mark(ErrTemplateScope, errs.ErrValidation)
	}
	if update.Pattern != nil {
		return errs.Mark(ErrPatternNeedsSeries, errs.ErrValidation)
	}
	now := p.clock.Now()
	if plan.target.HasStarted(now) {
		plan.reasons = append(plan.reasons, ReasonOccurrenceStarted)
		return nil
	}
	for _, m := range plan.members {
		if m.ID() != plan.target.ID() {
			plan.retained = append(plan.retained, m)
		}
	}
	if update.Details == nil {
		return nil
	}
	confirmed, err := store.Registrations().CountConfirmed(ctx, plan.target.ID())
	if err != nil {
		return err
	}
	if update.Details.Capacity < confirmed {
		plan.reasons = append(plan.reasons, fmt.Sprintf("%s (%d confirmed)", activity.ErrCapacityExceeded, confirmed))
	}
	return nil
}

func (p *SeriesPropagator) applySingle(ctx context.Context, store RegistrationStore, plan *seriesPlan, update SeriesUpdate, now time.Time) (int, error) {
	target := plan.target
	oldCapacity := target.Capacity()

	if update.Details != nil {
		confirmed, err := store.Registrations().CountConfirmed(ctx, target.ID())
		if err != nil {
			return 0, err
		}
		if err := target.UpdateDetails(*update.Details, confirmed, now); err != nil {
			return 0, errs.Mark(err, errs.ErrValidation)
		}
	}
	if update.Slot != nil {
		if err := target.Reschedule(*update.Slot, now); err != nil {
			return 0, errs.Mark(err, errs.ErrValidation)
		}
	}
	if err := target.Detach(now); err != nil {
		return 0, errs.Mark(err, errs.ErrValidation)
	}
	if err := store.Activities().Update(ctx, target); err != nil {
		return 0, err
	}

	if target.Capacity() <= oldCapacity {
		return 0, nil
	}
	promotion, err := p.capacity.PromoteFromWaitlist(ctx, store, target.ID())
	if err != nil {
		return 0, err
	}
	return len(promotion.Promoted), nil
}

// planTail replaces the target and every later occurrence. The replacements
// go into a new series split off at the target, so the root keeps
// describing the earlier occurrences and later whole-series edits of either
// part regenerate from their own template.
func (p *SeriesPropagator) planTail(plan *seriesPlan, update SeriesUpdate) error {
	now := p.clock.Now()
	target := plan.target
	if target.HasStarted(now) {
		plan.reasons = append(plan.reasons, ReasonOccurrenceStarted)
		return nil
	}

	for _, m := range plan.members {
		if m.Slot().Start().Before(target.Slot().Start()) {
			plan.retained = append(plan.retained, m)
		} else {
			plan.removed = append(plan.removed, m)
		}
	}

	details := plan.root.Details()
	if update.Details != nil {
		details = *update.Details
	}
	anchor := target.Slot()
	if update.Slot != nil {
		anchor = *update.Slot
	}
	split, err := plan.root.Split(details, anchor, plan.pattern, target.OccurrenceNumber(), now)
	if err != nil {
		return errs.Mark(err, errs.ErrValidation)
	}
	plan.split = split
	plan.template = split

	added, err := p.generator.GenerateOccurrences(split, plan.pattern)
	if err != nil {
		return errs.Mark(err, errs.ErrValidation)
	}
	plan.added = futureOnly(added, now)
	return nil
}

// planEntire regenerates every occurrence that has not started yet from the
// series start. Started occurrences keep their numbers; new ones continue
// after them within the pattern's maximum.
func (p *SeriesPropagator) planEntire(plan *seriesPlan, update SeriesUpdate) error {
	now := p.clock.Now()
	first := plan.root.StartNumber()
	lastNumber := first - 1
	for _, m := range plan.members {
		if m.HasStarted(now) {
			plan.retained = append(plan.retained, m)
			lastNumber = max(lastNumber, m.OccurrenceNumber())
		} else {
			plan.removed = append(plan.removed, m)
		}
	}

	template, err := p.template(plan.root, update.Details, update.Slot, now)
	if err != nil {
		return err
	}
	plan.template = template

	generated, err := p.generator.GenerateOccurrences(template, plan.pattern)
	if err != nil {
		return errs.Mark(err, errs.ErrValidation)
	}
	added := futureOnly(generated, now)
	if plan.pattern.MaxOccurrences != nil {
		allowed := max(*plan.pattern.MaxOccurrences-(first-1)-len(plan.retained), 0)
		if len(added) > allowed {
			added = added[:allowed]
		}
	}
	for i, occ := range added {
		occ.Renumber(lastNumber+i+1, now)
	}
	plan.added = added
	return nil
}

// template returns an unsaved copy of root carrying the new details and
// start, used as the master for generation.
func (p *SeriesPropagator) template(root *activity.Activity, details *activity.Details, slot *timeslot.TimeSlot, now time.Time) (*activity.Activity, error) {
	t := root.Clone()
	if details != nil {
		if err := t.UpdateDetails(*details, 0, now); err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
	}
	if slot != nil {
		if err := t.Reschedule(*slot, now); err != nil {
			return nil, errs.Mark(err, errs.ErrValidation)
		}
	}
	return t, nil
}

func futureOnly(occs []*activity.Activity, now time.Time) []*activity.Activity {
	out := occs[:0]
	for _, o := range occs {
		if !o.HasStarted(now) {
			out = append(out, o)
		}
	}
	return out
}

func (plan *seriesPlan) result(scope Scope) *RecurrenceUpdateResult {
	r := &RecurrenceUpdateResult{
		SeriesID:           plan.root.ID(),
		Scope:              scope,
		Added:              len(plan.added),
		Removed:            len(plan.removed),
		Retained:           len(plan.retained),
		AddedOccurrences:   summarize(plan.added),
		RemovedOccurrences: summarize(plan.removed),
		Reasons:            plan.reasons,
	}

	before := make(map[int]timeslot.TimeSlot, len(plan.removed))
	for _, o := range plan.removed {
		before[o.OccurrenceNumber()] = o.Slot()
	}
	for _, o := range plan.added {
		if old, ok := before[o.OccurrenceNumber()]; ok && !old.Start().Equal(o.Slot().Start()) {
			r.Retimed++
		}
	}
	return r
}

func summarize(occs []*activity.Activity) []OccurrenceSummary {
	out := make([]OccurrenceSummary, len(occs))
	for i, o := range occs {
		out[i] = OccurrenceSummary{ActivityID: o.ID(), Number: o.OccurrenceNumber(), Slot: o.Slot()}
	}
	return out
}
