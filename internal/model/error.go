// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package model

// ErrorReason is reported to the login view as the error query parameter.
type ErrorReason string

const (
	ErrorReasonAuthFailed      ErrorReason = "auth_failed"
	ErrorReasonAuthUnavailable ErrorReason = "auth_unavailable"
)
