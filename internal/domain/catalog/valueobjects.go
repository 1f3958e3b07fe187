// Package catalog provides the read-only view of resources, entitlements and
// job-title blueprints used to resolve what a user should have. The catalog is
// administered elsewhere; the reconciliation engine only consumes snapshots.
package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// RiskLevel classifies the sensitivity of an entitlement
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk level
func (r RiskLevel) String() string {
	return string(r)
}

// FlexBool is a boolean that tolerates the true/1/"1" encodings found in
// upstream record stores. Normalization happens here, at the catalog ingress;
// nothing past this boundary ever branches on a raw encoding.
type FlexBool bool

// Bool returns the canonical boolean value.
func (f FlexBool) Bool() bool {
	return bool(f)
}

// UnmarshalJSON accepts booleans, numbers and strings.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := coerceBool(raw)
	if err != nil {
		return err
	}
	*f = FlexBool(v)
	return nil
}

// MarshalJSON always emits a canonical boolean.
func (f FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Scan implements sql.Scanner for database columns stored as bool, int or text.
func (f *FlexBool) Scan(src any) error {
	if src == nil {
		*f = false
		return nil
	}
	v, err := coerceBool(src)
	if err != nil {
		return err
	}
	*f = FlexBool(v)
	return nil
}

// Value implements driver.Valuer.
func (f FlexBool) Value() (driver.Value, error) {
	return bool(f), nil
}

func coerceBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case []byte:
		return coerceBoolString(string(v))
	case string:
		return coerceBoolString(v)
	default:
		return false, fmt.Errorf("cannot decode %T as boolean", raw)
	}
}

func coerceBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes":
		return true, nil
	case "0", "false", "f", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("cannot decode %q as boolean", s)
	}
}
