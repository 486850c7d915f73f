package backupcode

import "errors"

var (
	ErrInvalidCount     = errors.New("invalid backup code count, must be between 1 and 100")
	ErrInvalidCode      = errors.New("invalid backup code format")
	ErrFailedToGenerate = errors.New("failed to generate backup code")
	ErrFailedToHash     = errors.New("failed to hash backup code")
	ErrFailedToStore    = errors.New("failed to store backup codes")
	ErrFailedToConsume  = errors.New("failed to consume backup code")
	ErrFailedToCount    = errors.New("failed to count backup codes")
	ErrFailedToDelete   = errors.New("failed to delete backup codes")
)
