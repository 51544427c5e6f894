package gabarito

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateNotFound is returned by stores for unknown template IDs.
var ErrTemplateNotFound = errors.New("template not found")

// ValidationError rejects builder input (empty title, bad question count,
// out-of-range question number, choice outside the alphabet). Recoverable:
// the builder state is unchanged and the caller re-prompts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IncompleteKeyError rejects finalization while answers are still unset.
// Missing holds the unkeyed question numbers in ascending order.
type IncompleteKeyError struct {
	Missing []int
}

func (e *IncompleteKeyError) Error() string {
	nums := make([]string, len(e.Missing))
	for i, q := range e.Missing {
		nums[i] = fmt.Sprintf("%d", q)
	}
	return "answer key incomplete: questions " + strings.Join(nums, ", ") + " unset"
}

// MalformedSubmissionError rejects a submission with more answers than the
// template has questions. Shorter submissions are padded, not rejected.
type MalformedSubmissionError struct {
	Got  int
	Want int
}

func (e *MalformedSubmissionError) Error() string {
	return fmt.Sprintf("submission has %d answers, template has %d questions", e.Got, e.Want)
}
