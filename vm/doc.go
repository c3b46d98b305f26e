// Package vm implements the Glucose object model.
//
// This package contains:
//   - Classes with single inheritance and named instance variables
//   - VTable-based member dispatch over interned selectors
//   - Methods and computed properties (getter/setter pairs)
//   - Message sends, property access and super sends
//
// Capabilities are attached to classes after definition by package mixin;
// this package only guarantees that attaching never displaces a member a
// class already declares.
package vm
