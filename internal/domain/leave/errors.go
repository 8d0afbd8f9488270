package leave

import "errors"

var (
	ErrLeaveRequestNotFound         = errors.New("leave request not found")
	ErrLeaveRequestAlreadyProcessed = errors.New("leave request already processed")
	ErrOverlappingRequest           = errors.New("another pending or approved request overlaps these dates")
	ErrNotRequestOwner              = errors.New("leave request belongs to another employee")
	ErrCannotReviewOwnRequest       = errors.New("cannot review your own request")
)
