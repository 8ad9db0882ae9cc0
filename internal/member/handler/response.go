package handler

import (
	"time"

	"bmmhub/internal/member"
)

// recordResponse is the member-facing view of a participation record. The
// access token is never echoed back; the ticket token is, since it is the
// member's own check-in credential.
type recordResponse struct {
	ID               string `json:"id"`
	EventID          string `json:"event_id"`
	MembershipNumber string `json:"membership_number"`
	Region           string `json:"region"`
	Stage            string `json:"stage"`

	Preferences *preferencesResponse `json:"preferences,omitempty"`
	Assignment  *assignmentResponse  `json:"assignment,omitempty"`

	IsAttending   *bool  `json:"is_attending,omitempty"`
	AbsenceReason string `json:"absence_reason,omitempty"`

	SpecialVote specialVoteResponse `json:"special_vote"`
	Ticket      *ticketResponse     `json:"ticket,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type preferencesResponse struct {
	Venues      []string   `json:"venues"`
	TimeBands   []string   `json:"time_bands,omitempty"`
	Workplace   string     `json:"workplace,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	Willingness string     `json:"willingness"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

type assignmentResponse struct {
	VenueName   string    `json:"venue_name"`
	StartsAt    time.Time `json:"starts_at"`
	Region      string    `json:"region"`
	CrossRegion bool      `json:"cross_region"`
}

type specialVoteResponse struct {
	Eligible  bool   `json:"eligible"`
	Requested bool   `json:"requested"`
	Status    string `json:"status"`
}

type ticketResponse struct {
	Token    string     `json:"token"`
	Status   string     `json:"status"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
	SentAt   *time.Time `json:"sent_at,omitempty"`
	Channel  string     `json:"channel,omitempty"`
}

func toResponse(r *member.Record) recordResponse {
	resp := recordResponse{
		ID:               r.ID.String(),
		EventID:          r.EventID,
		MembershipNumber: r.MembershipNumber,
		Region:           r.Region.String(),
		Stage:            r.Stage.String(),
		IsAttending:      r.IsAttending,
		AbsenceReason:    r.AbsenceReason,
		SpecialVote: specialVoteResponse{
			Eligible:  r.SpecialVote.Eligible,
			Requested: r.SpecialVote.Requested,
			Status:    string(r.SpecialVote.Status),
		},
		UpdatedAt: r.UpdatedAt,
	}
	if r.Preferences.SubmittedAt != nil {
		resp.Preferences = &preferencesResponse{
			Venues:      r.Preferences.Venues,
			TimeBands:   r.Preferences.TimeBands,
			Workplace:   r.Preferences.Workplace,
			Comments:    r.Preferences.Comments,
			Willingness: string(r.Preferences.Willingness),
			SubmittedAt: r.Preferences.SubmittedAt,
		}
	}
	if r.Assignment != nil {
		resp.Assignment = &assignmentResponse{
			VenueName:   r.Assignment.VenueName,
			StartsAt:    r.Assignment.StartsAt,
			Region:      r.Assignment.Region.String(),
			CrossRegion: r.Assignment.CrossRegion,
		}
	}
	if r.Ticket.Token != nil {
		resp.Ticket = &ticketResponse{
			Token:    r.Ticket.Token.String(),
			Status:   string(r.Ticket.Status),
			IssuedAt: r.Ticket.IssuedAt,
			SentAt:   r.Ticket.SentAt,
			Channel:  string(r.Ticket.Channel),
		}
	}
	return resp
}
