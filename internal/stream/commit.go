package stream

import "os"

// Outcome classifies the result of promoting one path.
type Outcome int

const (
	// Promoted means the transaction file replaced the original.
	Promoted Outcome = iota

	// Skipped means the original was newer than the transaction file and
	// the guard was enabled; the original is untouched.
	Skipped

	// NoTransaction means no transaction file exists for the path.
	NoTransaction

	// Failed means a transaction file exists but promoting it failed;
	// Err carries the rename error.
	Failed
)

// CommitResult reports the outcome of promoting one path.
type CommitResult struct {
	Path    string
	Outcome Outcome
	Err     error
}

// Commit promotes the transaction file of each path over its original.
// Each path is handled independently; a skip or missing transaction file
// is an outcome, never a fatal error. With check enabled a path whose
// original is at least as new as its transaction file is skipped. The
// modification-time guard is best effort, not a lock.
func Commit(paths []string, check bool) []CommitResult {
	results := make([]CommitResult, 0, len(paths))
	for _, path := range paths {
		results = append(results, commitOne(path, check))
	}
	return results
}

func commitOne(path string, check bool) CommitResult {
	txn := path + TransactionSuffix

	txnInfo, err := os.Stat(txn)
	if err != nil {
		return CommitResult{Path: path, Outcome: NoTransaction}
	}

	if check {
		origInfo, err := os.Stat(path)
		if err == nil && !origInfo.ModTime().Before(txnInfo.ModTime()) {
			return CommitResult{Path: path, Outcome: Skipped}
		}
	}

	if err := os.Rename(txn, path); err != nil {
		return CommitResult{Path: path, Outcome: Failed, Err: err}
	}
	return CommitResult{Path: path, Outcome: Promoted}
}
