package contracts

import "errors"

// ⭐ SSOT: 에러 분류는 여기서만 정의
//
// An empty result is NOT an error: the response layer returns the canonical
// empty grid instead. The two cases below are the only failure classes the
// query path distinguishes.

// ErrInvalidDateFormat marks a malformed non-empty tradeDate input. Only a
// missing/empty date falls back to the latest trading day; a malformed one
// aborts the request as a client error.
var ErrInvalidDateFormat = errors.New("invalid trade date format")

// ErrStoreUnavailable marks a row-store or calendar failure (connectivity,
// query error). It propagates unchanged to the response layer: no retry,
// no partial response, never masked as an empty result.
var ErrStoreUnavailable = errors.New("stock store unavailable")
