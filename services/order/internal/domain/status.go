package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// Status is the lifecycle stage of an order. The zero value is not a valid
// status.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusKitchen
	StatusReady
	StatusServed
	StatusBilled
	StatusCompleted
)

var statusNames = [...]string{
	StatusPending:   "Pending",
	StatusKitchen:   "Kitchen",
	StatusReady:     "Ready",
	StatusServed:    "Served",
	StatusBilled:    "Billed",
	StatusCompleted: "Completed",
}

var ErrUnknownStatus = errors.New("unknown order status")

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusKitchen, StatusReady, StatusServed, StatusBilled, StatusCompleted}
}

func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses() {
		if statusNames[st] == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) Valid() bool {
	return s >= StatusPending && s <= StatusCompleted
}

func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	return statusNames[s]
}

// Closed reports whether the order has been billed, after which no items may
// be added.
func (s Status) Closed() bool {
	return s == StatusBilled || s == StatusCompleted
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Value stores the status by name so the column stays readable.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return statusNames[s], nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
}

// StatusSet is a bitset of statuses.
type StatusSet uint8

func NewStatusSet(statuses ...Status) StatusSet {
	var set StatusSet
	for _, s := range statuses {
		set |= 1 << s
	}
	return set
}

func (set StatusSet) Has(s Status) bool {
	return s.Valid() && set&(1<<s) != 0
}

func (set StatusSet) Statuses() []Status {
	out := make([]Status, 0, len(statusNames))
	for _, s := range AllStatuses() {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Names returns the stored names of the statuses, for IN queries.
func (set StatusSet) Names() []string {
	statuses := set.Statuses()
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.String()
	}
	return out
}

var (
	KitchenQueue   = NewStatusSet(StatusPending, StatusKitchen)
	BillingQueue   = NewStatusSet(StatusReady, StatusServed)
	ClosedStatuses = NewStatusSet(StatusBilled, StatusCompleted)
)
