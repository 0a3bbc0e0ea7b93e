// Package models defines the data structures for the lead relay.
package models

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("invalid webhook signature")
	ErrEmptyRecord      = errors.New("mapping produced no fields to submit")
	ErrUpstreamNotSet   = errors.New("CRM webhook URL is not configured")
	ErrDuplicateEvent   = errors.New("duplicate delivery")
)

// RequiredEventKeys are the top-level document keys a webhook event must
// carry before mapping runs.
var RequiredEventKeys = []string{"contact", "call"}

// ValidateEvent checks that the decoded webhook document carries every
// required top-level key with a truthy value. The returned error names the
// first missing category.
func ValidateEvent(doc map[string]interface{}) error {
	for _, key := range RequiredEventKeys {
		if !IsTruthy(doc[key]) {
			return fmt.Errorf("missing required field %q in webhook payload", key)
		}
	}
	return nil
}

// IsTruthy mirrors the loose presence check the vendor contract uses:
// nil, false, empty string and numeric zero are absent; objects and lists
// count as present even when empty.
func IsTruthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}
