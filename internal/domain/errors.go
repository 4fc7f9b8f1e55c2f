package domain

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrInteractionNotFound  = errors.New("interaction not found")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrUnknownTenant        = errors.New("unknown tenant")
)
