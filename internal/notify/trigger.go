// Package notify holds the pure notification-trigger decisions. Functions
// here inspect before/after ticket state and say whether a notification is
// due and who receives it; delivery belongs to the mailer and the worker.
package notify

import "github.com/spec-kit/project-tracker/internal/domain"

// AssignmentChanged reports whether the resolved assignee differs between the
// two states. Both sides may be nil (unassigned).
func AssignmentChanged(before, after *string) bool {
	switch {
	case before == nil && after == nil:
		return false
	case before == nil || after == nil:
		return true
	default:
		return *before != *after
	}
}

// ShouldNotifyAssignment decides whether an assignment notification fires:
// the assignee changed, the ticket ended up assigned, and the new assignee is
// not the acting user (no self-notify).
func ShouldNotifyAssignment(before, after *string, actorID string) bool {
	if !AssignmentChanged(before, after) {
		return false
	}
	if after == nil {
		return false
	}
	return *after != actorID
}

// ShouldNotifyStatus decides whether a status-change notification fires.
func ShouldNotifyStatus(before, after domain.TicketStatus) bool {
	return before != after
}

// StatusRecipients builds the deduplicated recipient list for a status-change
// notification: the assignee and creator emails, nulls and blanks dropped.
func StatusRecipients(emails ...string) []string {
	seen := make(map[string]struct{}, len(emails))
	recipients := make([]string, 0, len(emails))
	for _, email := range emails {
		if email == "" {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}
	return recipients
}
