package vm

import "errors"

// Dispatch and attachment errors. Callers match them with errors.Is; the
// returned errors carry the class and selector as detail.
var (
	ErrDoesNotUnderstand = errors.New("does not understand")
	ErrNotCallable       = errors.New("member is not callable")
	ErrReadOnly          = errors.New("property has no setter")
	ErrWriteOnly         = errors.New("property has no getter")
	ErrArity             = errors.New("wrong number of arguments")
	ErrSlotExists        = errors.New("class already declares member")
	ErrNilReceiver       = errors.New("nil receiver")
)
