package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InvalidConfiguration failure.ErrorCode = "InvalidConfiguration"
	MalformedBatch       failure.ErrorCode = "MalformedBatch"
	RunAlreadyStored     failure.ErrorCode = "RunAlreadyStored"
	NotFound             failure.ErrorCode = "NotFound"
	ExtractionFailed     failure.ErrorCode = "ExtractionFailed"
	InternalServerError  failure.ErrorCode = "InternalError"
)
