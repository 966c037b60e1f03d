package domain

type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

func (s EventState) Valid() bool {
	return s == StatePending || s == StatePublished || s == StateCanceled
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestConfirmed, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// AdminStateAction is the moderation action an administrator attaches to an event update.
type AdminStateAction string

const (
	ActionPublishEvent AdminStateAction = "PUBLISH_EVENT"
	ActionRejectEvent  AdminStateAction = "REJECT_EVENT"
)

func (a AdminStateAction) Valid() bool {
	return a == ActionPublishEvent || a == ActionRejectEvent
}

// UserStateAction is the review action an initiator attaches to an event update.
type UserStateAction string

const (
	ActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	ActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

func (a UserStateAction) Valid() bool {
	return a == ActionSendToReview || a == ActionCancelReview
}
