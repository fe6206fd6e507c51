// Package ads loads, filters and writes the YAML ad description files the
// bot manages on behalf of the user.
package ads

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// Ad is one classified ad as described by its YAML file. The json tags
// match what the platform API speaks.
type Ad struct {
	ID                    int64      `yaml:"id,omitempty" json:"id,omitempty"`
	Active                *bool      `yaml:"active,omitempty" json:"active,omitempty"`
	Type                  string     `yaml:"type,omitempty" json:"type,omitempty"` // OFFER or WANTED
	Title                 string     `yaml:"title" json:"title"`
	Description           string     `yaml:"description,omitempty" json:"description,omitempty"`
	Category              string     `yaml:"category,omitempty" json:"category,omitempty"`
	Price                 float64    `yaml:"price,omitempty" json:"price,omitempty"`
	PriceType             string     `yaml:"price_type,omitempty" json:"price_type,omitempty"` // FIXED, NEGOTIABLE or GIVE_AWAY
	ShippingType          string     `yaml:"shipping_type,omitempty" json:"shipping_type,omitempty"`
	Images                []string   `yaml:"images,omitempty" json:"images,omitempty"`
	Contact               Contact    `yaml:"contact,omitempty" json:"contact,omitempty"`
	RepublicationInterval int        `yaml:"republication_interval_days,omitempty" json:"republication_interval_days,omitempty"`
	CreatedOn             *time.Time `yaml:"created_on,omitempty" json:"created_on,omitempty"`
	UpdatedOn             *time.Time `yaml:"updated_on,omitempty" json:"updated_on,omitempty"`
}

// Contact holds the per-ad contact details shown on the platform.
type Contact struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Street  string `yaml:"street,omitempty" json:"street,omitempty"`
	Zipcode string `yaml:"zipcode,omitempty" json:"zipcode,omitempty"`
	Phone   string `yaml:"phone,omitempty" json:"phone,omitempty"`
}

// IsActive reports whether the ad should be managed at all. Ads default to
// active unless the file says otherwise.
func (a *Ad) IsActive() bool {
	return a.Active == nil || *a.Active
}

// ContentHash returns a stable fingerprint of the user-editable ad content.
// The platform-assigned id and the bookkeeping timestamps are excluded so
// that publishing an ad does not make it look changed.
func (a *Ad) ContentHash() (string, error) {
	clone := *a
	clone.ID = 0
	clone.CreatedOn = nil
	clone.UpdatedOn = nil

	raw, err := yaml.Marshal(&clone)
	if err != nil {
		return "", fmt.Errorf("failed to hash ad %q: %w", a.Title, err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Read parses the ad file at path.
func Read(path string) (*Ad, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ad file %s: %w", path, err)
	}
	var ad Ad
	if err := yaml.Unmarshal(raw, &ad); err != nil {
		return nil, fmt.Errorf("failed to parse ad file %s: %w", path, err)
	}
	return &ad, nil
}

// Save writes the ad back to path, for example after the platform assigned
// an id to it.
func Save(path string, ad *Ad) error {
	raw, err := yaml.Marshal(ad)
	if err != nil {
		return fmt.Errorf("failed to marshal ad %q: %w", ad.Title, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create ad directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write ad file %s: %w", path, err)
	}
	return nil
}

var sanitizer = bluemonday.StrictPolicy()

// SanitizeDescription strips HTML markup from a downloaded ad description,
// leaving plain text suitable for a hand-edited YAML file.
func SanitizeDescription(s string) string {
	return html.UnescapeString(sanitizer.Sanitize(s))
}
