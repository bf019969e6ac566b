// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package db

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidProfile = errors.New("profile without id")
)
