package device

import (
	"fmt"
	"strings"
)

const (
	maxNameLength = 100
	maxSlugLength = 50

	maxConfigKeys     = 50
	maxStateKeys      = 20
	maxStringValueLen = 1024
)

// ValidateDevice checks a device before it is persisted.
// It returns the first problem found.
func ValidateDevice(d *Device) error {
	if d == nil {
		return fmt.Errorf("%w: device is nil", ErrInvalidDevice)
	}
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDevice)
	}
	if err := ValidateName(d.Name); err != nil {
		return err
	}
	if d.Platform == "" {
		return fmt.Errorf("%w: platform is required", ErrInvalidDevice)
	}
	if d.Class == "" {
		return fmt.Errorf("%w: class is required", ErrInvalidDevice)
	}
	if err := validateMap(d.Config, "config", maxConfigKeys); err != nil {
		return err
	}
	return validateMap(d.State, "state", maxStateKeys)
}

// ValidateName checks that a name is non-empty and within limits.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

func validateMap(m map[string]any, field string, maxKeys int) error {
	if len(m) > maxKeys {
		return fmt.Errorf("%w: %s has %d keys (max %d)", ErrInvalidDevice, field, len(m), maxKeys)
	}
	for k, v := range m {
		if s, ok := v.(string); ok && len(s) > maxStringValueLen {
			return fmt.Errorf("%w: %s.%s exceeds %d characters", ErrInvalidDevice, field, k, maxStringValueLen)
		}
	}
	return nil
}

// GenerateSlug creates a URL-safe slug from a name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = strings.NewReplacer(" ", "-", "_", "-").Replace(slug)

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	slug = b.String()

	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}
