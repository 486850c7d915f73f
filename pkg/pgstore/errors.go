package pgstore

import "errors"

var (
	ErrQueryFailed = errors.New("pgstore: query failed")
	ErrTxFailed    = errors.New("pgstore: transaction failed")
)
