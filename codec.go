package lockdrop

import (
	"reflect"

	amino "github.com/tendermint/go-amino"

	"github.com/iov-one/lockdrop/errors"
)

// cdc is the binary codec shared by all models and messages. Message types
// are registered by their extensions during init so that a transaction can
// carry any of them behind the Msg interface.
var cdc = amino.NewCodec()

func init() {
	cdc.RegisterInterface((*Msg)(nil), nil)
}

// RegisterMsg declares a concrete message type under a unique name. Call it
// from an init function, passing a pointer to the zero value.
func RegisterMsg(msg Msg, name string) {
	cdc.RegisterConcrete(msg, name, nil)
}

// MarshalBinary encodes any model or message.
func MarshalBinary(o interface{}) ([]byte, error) {
	bz, err := cdc.MarshalBinaryBare(o)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return bz, nil
}

// UnmarshalBinary decodes into ptr data produced by MarshalBinary.
func UnmarshalBinary(bz []byte, ptr interface{}) error {
	if err := cdc.UnmarshalBinaryBare(bz, ptr); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return nil
}

// assignMsg copies the message into destination that must be a pointer to
// the same message type.
func assignMsg(msg Msg, destination interface{}) error {
	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errors.Wrap(errors.ErrInvalidType, "destination must be a pointer")
	}
	src := reflect.ValueOf(msg)
	if src.Kind() == reflect.Ptr {
		src = src.Elem()
	}
	if !src.Type().AssignableTo(dest.Elem().Type()) {
		return errors.Wrapf(errors.ErrInvalidType, "want %T message, got %T", destination, msg)
	}
	dest.Elem().Set(src)
	return nil
}
