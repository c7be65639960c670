package geotracker

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Kind classifies why a pipeline run was aborted.
type Kind int

const (
	MissingConfiguration Kind = iota + 1
	InvalidValue
	InvalidCredential
	PersistenceFailure
	RenderSinkFailure
	UpstreamServiceFailure
)

var kindNames = map[Kind]string{
	MissingConfiguration:   "missing_configuration",
	InvalidValue:           "invalid_value",
	InvalidCredential:      "invalid_credential",
	PersistenceFailure:     "persistence_failure",
	RenderSinkFailure:      "render_sink_failure",
	UpstreamServiceFailure: "upstream_service_failure",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func wrapError(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Err: errors.Wrap(err, message)}
}

// KindOf returns the Kind of err, or 0 if it is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// logError logs at warning level for configuration that is expected to be
// missing during setup, error level otherwise.
func logError(err error) {
	if err == nil {
		return
	}
	entry := log.WithField("kind", KindOf(err).String())
	if KindOf(err) == MissingConfiguration {
		entry.Warnln("Geotracking skipped:", err)
	} else {
		entry.Errorln("Geotracking failed:", err)
	}
}
