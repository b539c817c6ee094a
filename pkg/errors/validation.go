package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// typeIDRegex matches valid block type identifiers, following the builtin
// library's convention: a lowercase first letter, then letters, digits, and
// underscores (e.g. "controls_if", "controls_whileUntil").
var typeIDRegex = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)

// ValidateTypeID validates a block type identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - Letters, digits, and underscores only
//   - Must start with a lowercase letter
//   - Maximum length of 64 characters
func ValidateTypeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTypeID, "block type cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidTypeID, "block type too long (max 64 characters)")
	}

	if !typeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidTypeID, "invalid block type: %q", id)
	}

	return nil
}

// documentIDRegex matches valid stored-document identifiers.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentID validates a stored-document identifier for safety.
// It rejects identifiers that could be used for path traversal when a
// file-backed store maps IDs to file names.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document ID cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "document ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document ID contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "document ID cannot contain path traversal sequences (..)")
	}

	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid document ID: %q", id)
	}

	return nil
}

// ValidateFieldName validates a field name used in block definitions
// and documents. Field names are short ASCII identifiers ("NUM", "OP").
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "field name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "field name too long (max 64 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "field name contains invalid characters")
		}
	}

	return nil
}
