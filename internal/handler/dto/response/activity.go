package response

import (
	"club-scheduler/internal/usecase/commands"
	"club-scheduler/internal/usecase/queries"
)

type ActivityCreatedResponse struct {
	Activity        *queries.ActivityView   `json:"activity"`
	Occurrences     []*queries.ActivityView `json:"occurrences"`
	OccurrenceCount int                     `json:"occurrence_count"`
}

func FromActivityCreated(r *commands.ActivityCreatedResult) *ActivityCreatedResponse {
	occurrences := r.Occurrences
	if occurrences == nil {
		occurrences = []*queries.ActivityView{}
	}
	return &ActivityCreatedResponse{
		Activity:        r.Activity,
		Occurrences:     occurrences,
		OccurrenceCount: len(occurrences),
	}
}

type ActivityListResponse struct {
	Items []*queries.ActivityView `json:"items"`
}

func FromActivityViews(views []*queries.ActivityView) *ActivityListResponse {
	if views == nil {
		views = []*queries.ActivityView{}
	}
	return &ActivityListResponse{Items: views}
}

type RegistrationResponse struct {
	Registration     *queries.RegistrationView `json:"registration,omitempty"`
	Status           string                    `json:"status"`
	WaitlistPosition *int                      `json:"waitlist_position,omitempty"`
	Reasons          []string                  `json:"reasons,omitempty"`
	Replayed         bool                      `json:"replayed,omitempty"`
}

func FromRegistrationOutcome(r *commands.RegistrationOutcome) *RegistrationResponse {
	return &RegistrationResponse{
		Registration:     r.Registration,
		Status:           r.Status.String(),
		WaitlistPosition: r.WaitlistPosition,
		Reasons:          r.Reasons,
		Replayed:         r.IsReplayed,
	}
}

type CancelRegistrationResponse struct {
	Registration *queries.RegistrationView   `json:"registration"`
	Promoted     []*queries.RegistrationView `json:"promoted"`
	Reasons      []string                    `json:"reasons,omitempty"`
}

func FromCancelRegistration(r *commands.CancelRegistrationOutcome) *CancelRegistrationResponse {
	promoted := r.Promoted
	if promoted == nil {
		promoted = []*queries.RegistrationView{}
	}
	return &CancelRegistrationResponse{
		Registration: r.Registration,
		Promoted:     promoted,
		Reasons:      r.Reasons,
	}
}

type RegistrationListResponse struct {
	Items []*queries.RegistrationView `json:"items"`
}

func FromRegistrationViews(views []*queries.RegistrationView) *RegistrationListResponse {
	if views == nil {
		views = []*queries.RegistrationView{}
	}
	return &RegistrationListResponse{Items: views}
}
