package datamodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a backend record. The backend sends numbers for some entities and
// strings for others; both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

func (id ID) Empty() bool { return id == "" }

// AdminState is the enabled/disabled flag most entities carry.
type AdminState int

const (
	AdminDisabled AdminState = 0
	AdminEnabled  AdminState = 1
)

func (s AdminState) Enabled() bool { return s == AdminEnabled }

func (s AdminState) String() string {
	if s.Enabled() {
		return "Enabled"
	}
	return "Disabled"
}

// ParseAdminState accepts 0/1 as well as the labels shown in the grid.
func ParseAdminState(s string) (AdminState, error) {
	switch s {
	case "1", "enabled", "Enabled", "true":
		return AdminEnabled, nil
	case "0", "disabled", "Disabled", "false":
		return AdminDisabled, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid admin state %q", s)
	}
	return AdminState(n), nil
}
