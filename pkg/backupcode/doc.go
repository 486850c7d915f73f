// Package backupcode issues and redeems single-use recovery codes.
//
// Codes are drawn from a 32-symbol alphabet without ambiguous characters and
// only their hashes are stored. Redemption is one conditional write on the
// store, so two concurrent attempts with the same code cannot both succeed.
//
//	mgr := backupcode.NewManager(store, backupcode.WithHasher(backupcode.KeyedHasher{Sealer: sealer}))
//	codes, err := mgr.Generate(ctx, userID, backupcode.DefaultCount)
//	ok, err := mgr.Consume(ctx, userID, "abcd-efgh")
//
// Generate replaces every unused code issued earlier. Consume normalizes input
// (case, spaces, dashes, fullwidth forms) before hashing.
package backupcode
