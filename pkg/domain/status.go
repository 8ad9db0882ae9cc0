package domain

import dErrors "bmmhub/pkg/domain-errors"

// SpecialVoteStatus tracks a member's postal-vote application.
type SpecialVoteStatus string

const (
	SpecialVoteNone          SpecialVoteStatus = "NONE"
	SpecialVotePending       SpecialVoteStatus = "PENDING"
	SpecialVoteApproved      SpecialVoteStatus = "APPROVED"
	SpecialVoteDeclined      SpecialVoteStatus = "DECLINED"
	SpecialVoteNotApplicable SpecialVoteStatus = "NOT_APPLICABLE"
)

var validSpecialVoteStatuses = map[SpecialVoteStatus]bool{
	SpecialVoteNone:          true,
	SpecialVotePending:       true,
	SpecialVoteApproved:      true,
	SpecialVoteDeclined:      true,
	SpecialVoteNotApplicable: true,
}

// ParseSpecialVoteStatus constructs a SpecialVoteStatus from external input.
func ParseSpecialVoteStatus(s string) (SpecialVoteStatus, error) {
	st := SpecialVoteStatus(s)
	if !validSpecialVoteStatuses[st] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown special vote status %q", s)
	}
	return st, nil
}

func (s SpecialVoteStatus) IsValid() bool { return validSpecialVoteStatuses[s] }

func (s SpecialVoteStatus) String() string { return string(s) }

// TicketStatus tracks the credential a confirmed attendee presents at check-in.
type TicketStatus string

const (
	TicketNone            TicketStatus = "NONE"
	TicketPending         TicketStatus = "PENDING"
	TicketEmailSent       TicketStatus = "EMAIL_SENT"
	TicketSMSSent         TicketStatus = "SMS_SENT"
	TicketEmailFailed     TicketStatus = "EMAIL_FAILED"
	TicketSMSFailed       TicketStatus = "SMS_FAILED"
	TicketNoContactMethod TicketStatus = "NO_CONTACT_METHOD"
	TicketCheckedIn       TicketStatus = "CHECKED_IN"
)

var validTicketStatuses = map[TicketStatus]bool{
	TicketNone:            true,
	TicketPending:         true,
	TicketEmailSent:       true,
	TicketSMSSent:         true,
	TicketEmailFailed:     true,
	TicketSMSFailed:       true,
	TicketNoContactMethod: true,
	TicketCheckedIn:       true,
}

// ParseTicketStatus constructs a TicketStatus from external input.
func ParseTicketStatus(s string) (TicketStatus, error) {
	st := TicketStatus(s)
	if !validTicketStatuses[st] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown ticket status %q", s)
	}
	return st, nil
}

func (s TicketStatus) IsValid() bool { return validTicketStatuses[s] }

func (s TicketStatus) String() string { return string(s) }

// Channel is the delivery channel used for ticket dispatch.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// FailedStatus maps a delivery channel to its failure ticket status. The
// delivery worker reports failures out-of-band and the reconciler applies
// this mapping.
func (c Channel) FailedStatus() TicketStatus {
	if c == ChannelSMS {
		return TicketSMSFailed
	}
	return TicketEmailFailed
}

// SentStatus maps a delivery channel to its optimistic post-publish status.
func (c Channel) SentStatus() TicketStatus {
	if c == ChannelSMS {
		return TicketSMSSent
	}
	return TicketEmailSent
}

// AttendanceWillingness is the tri-state signal captured with preferences,
// before the member's final attendance decision.
type AttendanceWillingness string

const (
	WillingnessYes       AttendanceWillingness = "yes"
	WillingnessNo        AttendanceWillingness = "no"
	WillingnessUndecided AttendanceWillingness = "undecided"
)

var validWillingness = map[AttendanceWillingness]bool{
	WillingnessYes:       true,
	WillingnessNo:        true,
	WillingnessUndecided: true,
}

// ParseWillingness constructs an AttendanceWillingness from external input.
// The empty string is treated as undecided.
func ParseWillingness(s string) (AttendanceWillingness, error) {
	if s == "" {
		return WillingnessUndecided, nil
	}
	w := AttendanceWillingness(s)
	if !validWillingness[w] {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown attendance willingness %q", s)
	}
	return w, nil
}

func (w AttendanceWillingness) IsValid() bool { return validWillingness[w] }

func (w AttendanceWillingness) String() string { return string(w) }
