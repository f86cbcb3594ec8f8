package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Payload size limits (in bytes)
const (
	MaxArgsSize     = 64 * 1024  // 64KB - open arguments
	MaxTemplateSize = 256 * 1024 // 256KB - one template document
	MaxBodySize     = 128 * 1024 // 128KB - template body after sanitizing
	MaxScriptSize   = 64 * 1024  // 64KB - script source
)

// String length limits
const (
	MaxTagLength         = 64
	MaxTitleLength       = 256
	MaxDescriptionLength = 2048
	MaxMetaEntries       = 32
	MaxArgsDepth         = 8
)

// TagPattern allows alphanumeric, dots, hyphens, underscores and must start with a letter
var TagPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateTag validates a template type tag
func ValidateTag(tag string) error {
	if err := ValidateString(tag, "tag", 1, MaxTagLength, true); err != nil {
		return err
	}

	if !TagPattern.MatchString(tag) {
		return fmt.Errorf("tag %q contains invalid characters (letters first, then alphanumeric, dots, hyphens, underscores)", tag)
	}

	return nil
}

// ValidateArgs checks open arguments for size and nesting depth
func ValidateArgs(args map[string]interface{}) error {
	if len(args) == 0 {
		return nil
	}

	data, err := sonic.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}
	if len(data) > MaxArgsSize {
		return fmt.Errorf("args size %d bytes exceeds maximum %d bytes", len(data), MaxArgsSize)
	}

	return ValidateDepth(args, MaxArgsDepth)
}

// ValidateDepth checks if nesting depth is within limits
func ValidateDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateMeta validates a template's free-form metadata
func ValidateMeta(meta map[string]string) error {
	if len(meta) > MaxMetaEntries {
		return fmt.Errorf("too many meta entries (maximum %d)", MaxMetaEntries)
	}

	for key, value := range meta {
		if err := ValidateString(key, "meta key", 1, MaxTagLength, true); err != nil {
			return err
		}
		if err := ValidateString(value, fmt.Sprintf("meta[%s]", key), 0, MaxDescriptionLength, false); err != nil {
			return err
		}
	}

	return nil
}
