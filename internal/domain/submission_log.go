package domain

import "time"

// HoneypotAuthor is the sentinel recorded in the submission log when the
// honeypot field of a form was filled in.
const HoneypotAuthor = "honeypot:"

// SubmissionLogRecord is one append-only audit entry for a submission
// attempt. It carries only a display name (or a honeypot-tagged sentinel);
// no identity linkage is guaranteed.
type SubmissionLogRecord struct {
	ID        int64
	Author    string
	CreatedAt time.Time
}
