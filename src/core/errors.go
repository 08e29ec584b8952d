// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds, one per construction stage. Match with errors.Is.
var (
	ErrInitialization         = errors.New("initialization failed")
	ErrSurfaceCreation        = errors.New("surface creation failed")
	ErrNoSuitableDevice       = errors.New("no suitable device")
	ErrDeviceCreation         = errors.New("device creation failed")
	ErrSwapchainCreation      = errors.New("swapchain creation failed")
	ErrViewCreation           = errors.New("image view creation failed")
	ErrRenderPassCreation     = errors.New("render pass creation failed")
	ErrShaderModuleCreation   = errors.New("shader module creation failed")
	ErrPipelineLayoutCreation = errors.New("pipeline layout creation failed")
)

// StageError carries the kind of failure together with the
// underlying cause reported by the driver or the caller.
type StageError struct {
	Kind error
	Err  error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

// Is reports whether target is the kind of this error.
func (e *StageError) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Cause implements the github.com/pkg/errors causer.
func (e *StageError) Cause() error {
	return e.Err
}

func stageError(kind error, err error, msg string) error {
	if err == nil {
		return &StageError{Kind: kind, Err: errors.New(msg)}
	}
	return &StageError{Kind: kind, Err: errors.Wrap(err, msg)}
}
