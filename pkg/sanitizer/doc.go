// Package sanitizer contains small composable string transforms used to
// canonicalize user input before it is validated or hashed.
//
// Transforms are plain func(string) string values chained with Apply or
// Compose:
//
//	code := sanitizer.Apply(raw, sanitizer.Trim, sanitizer.FoldWidth, sanitizer.StripSeparators)
//
// OneTimeCode is the pipeline shared by TOTP and backup-code verification.
package sanitizer
