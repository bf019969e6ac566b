// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package session

import "errors"

var (
	ErrNotFound     = errors.New("session not found")
	ErrExpired      = errors.New("session expired")
	ErrInvalidToken = errors.New("invalid session token")
)
