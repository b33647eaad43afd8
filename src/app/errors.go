package app

// HttpError is the error currency of the service: every collaborator and
// handler failure is wrapped into one before it reaches the client, so a
// response body is always {"message": ...} with the carried status.
type HttpError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func NewHttpError(message string, status int) *HttpError {
	return &HttpError{Message: message, Status: status}
}

func (e *HttpError) Error() string {
	return e.Message
}
