// Package apperrors defines the tagged-sum error taxonomy shared by the
// client and server: Config, Network, Auth, Deploy, FileSystem, Service.
package apperrors

import "fmt"

// Kind classifies an Error into one of the taxonomy arms from spec §7.
type Kind int

const (
	// Config covers missing/invalid TOML, unknown host keys, empty package lists.
	Config Kind = iota
	// Network covers channel build, connect, and transport failures.
	Network
	// Auth covers key load/parse failures.
	Auth
	// Deploy covers hash mismatch, extraction failure, hook non-zero exit.
	Deploy
	// FileSystem covers absent source paths and write failures.
	FileSystem
	// Service covers platform service-manager failures.
	Service
)

func (k Kind) String() string {
	switch k {
	case Config:
		return "ConfigError"
	case Network:
		return "NetworkError"
	case Auth:
		return "AuthError"
	case Deploy:
		return "DeployError"
	case FileSystem:
		return "FileSystemError"
	case Service:
		return "ServiceError"
	default:
		return "UnknownError"
	}
}

// Error is the concrete type backing every arm of the taxonomy.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Constructors, one per arm, mirroring spec §7's taxonomy table.

func NewConfig(format string, args ...interface{}) *Error { return newf(Config, format, args...) }
func WrapConfig(cause error, format string, args ...interface{}) *Error {
	return wrap(Config, cause, format, args...)
}

func NewNetwork(format string, args ...interface{}) *Error { return newf(Network, format, args...) }
func WrapNetwork(cause error, format string, args ...interface{}) *Error {
	return wrap(Network, cause, format, args...)
}

func NewAuth(format string, args ...interface{}) *Error { return newf(Auth, format, args...) }
func WrapAuth(cause error, format string, args ...interface{}) *Error {
	return wrap(Auth, cause, format, args...)
}

func NewDeploy(format string, args ...interface{}) *Error { return newf(Deploy, format, args...) }
func WrapDeploy(cause error, format string, args ...interface{}) *Error {
	return wrap(Deploy, cause, format, args...)
}

func NewFileSystem(format string, args ...interface{}) *Error {
	return newf(FileSystem, format, args...)
}
func WrapFileSystem(cause error, format string, args ...interface{}) *Error {
	return wrap(FileSystem, cause, format, args...)
}

func NewService(format string, args ...interface{}) *Error { return newf(Service, format, args...) }
func WrapService(cause error, format string, args ...interface{}) *Error {
	return wrap(Service, cause, format, args...)
}

// As reports whether err is an *Error and, if so, returns it.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}
