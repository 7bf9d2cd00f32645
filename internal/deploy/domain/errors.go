package domain

import (
	"errors"
	"fmt"
)

// MissingRequiredInputError reports a required input that resolved to an
// empty value across every source. It is fatal before any external call.
type MissingRequiredInputError struct {
	Name string
}

func (e *MissingRequiredInputError) Error() string {
	return fmt.Sprintf("required input %q is missing", e.Name)
}

// NewMissingRequiredInputError creates an error for the named input.
func NewMissingRequiredInputError(name string) *MissingRequiredInputError {
	return &MissingRequiredInputError{Name: name}
}

// IsMissingRequiredInput reports whether err is a missing-input failure.
func IsMissingRequiredInput(err error) bool {
	var e *MissingRequiredInputError
	return errors.As(err, &e)
}

// MissingRepoAliasError reports a chart repository configured without an
// alias to register it under.
type MissingRepoAliasError struct {
	Repo string
}

func (e *MissingRepoAliasError) Error() string {
	return fmt.Sprintf("repo %q configured without repo alias", e.Repo)
}

// ToolInvocationError reports a non-zero exit from an external tool
// invocation that was not running in ignore-failure mode.
type ToolInvocationError struct {
	Binary   string
	Args     []string
	ExitCode int
	Cause    error
}

func (e *ToolInvocationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %v failed: %v", e.Binary, e.Args, e.Cause)
	}
	return fmt.Sprintf("%s %v exited with code %d", e.Binary, e.Args, e.ExitCode)
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Cause
}

// PluginInstallError reports a failed plugin installation. It aborts the
// remaining plugin list and the pipeline.
type PluginInstallError struct {
	URL   string
	Cause error
}

func (e *PluginInstallError) Error() string {
	return fmt.Sprintf("installing plugin %q: %v", e.URL, e.Cause)
}

func (e *PluginInstallError) Unwrap() error {
	return e.Cause
}
