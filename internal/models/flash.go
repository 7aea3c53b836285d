package models

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot status message shown on the next rendered page.
type Flash struct {
	Severity string `json:"severity"` // success | error
	Message  string `json:"message"`
}
