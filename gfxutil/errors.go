package gfxutil

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// NotImplementedError is the error wrapped by every code path that exists in the hardware
// documentation but has not been built (or has not been validated) in this driver. Callers can
// test for it with errors.Is to distinguish "not yet built" from "built but returned empty".
var NotImplementedError error = errors.New("not implemented")
