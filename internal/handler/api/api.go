package api

import (
	"storefront/internal/pkg/errs"
)

var errUnauthenticated = errs.New("authentication required")
