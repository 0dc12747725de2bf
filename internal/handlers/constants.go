package handlers

const (
	maxBodyBytes = 1 << 20

	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrSessionExpired      = "Session not found or expired"
	ErrUnknownGame         = "Unknown game kind"
	ErrTooManyRequests     = "Too many requests"
	ErrJournalDisabled     = "Journal is disabled"
	ErrInternalServerError = "Internal server error"
)
