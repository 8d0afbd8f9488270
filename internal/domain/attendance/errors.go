package attendance

import "errors"

// Attendance domain errors
var (
	// ErrInvalidInput is returned by the classifier for malformed dates, timestamps or enums.
	ErrInvalidInput = errors.New("invalid attendance input")

	// Scan errors
	ErrScanInProgress   = errors.New("a scan was just recorded, try again in a few seconds")
	ErrEmployeeInactive = errors.New("employee account is inactive")

	// WFH errors
	ErrWfhNotApproved    = errors.New("no approved work from home request covers today")
	ErrWfhAlreadyStarted = errors.New("work from home already started today")
	ErrWfhNotStarted     = errors.New("work from home has not been started today")
	ErrWfhAlreadyEnded   = errors.New("work from home already ended today")
)
