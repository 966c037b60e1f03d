package dto

import "time"

type LocationResp struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type EventShort struct {
	ID                string    `json:"id"`
	Annotation        string    `json:"annotation"`
	Category          string    `json:"category"`
	ConfirmedRequests int       `json:"confirmedRequests"`
	EventDate         time.Time `json:"eventDate"`
	Initiator         string    `json:"initiator"`
	Paid              bool      `json:"paid"`
	Title             string    `json:"title"`
	Views             int64     `json:"views"`
}

type EventFull struct {
	EventShort
	CreatedOn         time.Time    `json:"createdOn"`
	Description       string       `json:"description"`
	Location          LocationResp `json:"location"`
	ParticipantLimit  int          `json:"participantLimit"`
	PublishedOn       *time.Time   `json:"publishedOn,omitempty"`
	RequestModeration bool         `json:"requestModeration"`
	State             string       `json:"state"`
}

type ParticipationRequestResp struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Requester string    `json:"requester"`
	Status    string    `json:"status"`
	Created   time.Time `json:"created"`
}

type StatusUpdateResult struct {
	ConfirmedRequests []ParticipationRequestResp `json:"confirmedRequests"`
	RejectedRequests  []ParticipationRequestResp `json:"rejectedRequests"`
}

type ViewStatResp struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
