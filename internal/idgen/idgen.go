package idgen

import (
	"github.com/google/uuid"
)

// ID prefixes for different models
const (
	PrefixReconfiguration = "rcfg_"
)

// NewReconfiguration generates a reconfiguration session ID with rcfg_ prefix
func NewReconfiguration() string {
	return PrefixReconfiguration + uuid.New().String()
}

// New generates a generic UUID without prefix
func New() string {
	return uuid.New().String()
}
