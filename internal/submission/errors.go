package submission

import (
	"errors"
	"fmt"
)

var ErrSubmissionInFlight = errors.New("submission: another submission is in progress")

// Stage - этап отправки, на котором произошла ошибка
type Stage string

const (
	StageValidate   Stage = "validate"
	StageGenerateID Stage = "generate_id"
	StageUpload     Stage = "upload"
	StageInsert     Stage = "insert"
)

// Kind классифицирует ошибку для пользователя
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindTransient  Kind = "transient"
	KindExhausted  Kind = "exhausted_retries"
)

// StageError - ошибка этапа отправки. Message показывается пользователю как есть.
type StageError struct {
	Stage   Stage
	Kind    Kind
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return e.Message
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func (e *StageError) String() string {
	return fmt.Sprintf("%s (%s): %s", e.Stage, e.Kind, e.Message)
}
