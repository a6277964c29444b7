// Copyright (c) 2025 Stellar Cyber, Inc.
//
// This file is part of support-tools.
//
// Licensed under the MIT License. See the LICENSE file for details.

package factory

import "errors"

var (
	// ErrUnknownProvider is returned when an unknown provider type is specified.
	ErrUnknownProvider = errors.New("unknown provider type")
)
