package mixin

import "errors"

var (
	// ErrInvalidCapability reports a malformed bundle or descriptor. It is
	// returned by Mixin, never by Install.
	ErrInvalidCapability = errors.New("invalid capability")

	// ErrCapabilityCollision reports a bundle property whose name the
	// target class already declares.
	ErrCapabilityCollision = errors.New("capability collision")
)
