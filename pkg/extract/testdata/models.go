// Package testdata contains test types for schema extraction.
package testdata

// Status represents the status of a user.
type Status uint16

const (
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
)

// Priority is a small priority level.
type Priority uint8

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// User represents a user in the system.
type User struct {
	ID       int64    `seriagen:"0"`
	Name     string   `seriagen:"1"`
	Email    string   `seriagen:"2"`
	Status   Status   `seriagen:"3"`
	Age      int32    `seriagen:"4"`
	Tags     []string `seriagen:"5"`
	Address  Address  `seriagen:"6"`
	Scores   [3]uint8 `seriagen:"7"`
	Internal string   `seriagen:"-"` // excluded from the generated schema
}

// Address represents a physical address.
// @seriagen:struct
type Address struct {
	Street  string `seriagen:"0"`
	City    string `seriagen:"1"`
	ZipCode string `seriagen:"2"`
}

// privateType is an unexported type that should be excluded by default.
type privateType struct {
	Value int
}
