package models

// EmailMessage is what the email notifier hands to the broker.
type EmailMessage struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	EventType EventType `json:"event_type"`
	EventID   string    `json:"event_id"`
}

type PushMessage struct {
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	EventType EventType `json:"event_type"`
	EventID   string    `json:"event_id"`
}
