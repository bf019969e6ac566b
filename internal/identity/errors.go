// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package identity

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrProviderDisabled = errors.New("oauth provider not configured")
	ErrStateMismatch    = errors.New("oauth state mismatch")
	ErrProviderRejected = errors.New("oauth provider returned an error")
)
