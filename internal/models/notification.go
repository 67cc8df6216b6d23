package models

// Notification is the text payload a scheduled job hands to the delivery collaborator.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
