package apperr

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return format(e.Message, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// DecodeError reports raw input that could not be parsed into a document.
type DecodeError struct {
	Message string
	Input   []byte
	Err     error
}

func (e *DecodeError) Error() string {
	return format(e.Message, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func NewDecode(input []byte, err error) *DecodeError {
	return &DecodeError{Message: "failed to decode chunk", Input: input, Err: err}
}

// EncodeError reports a document that could not be serialized to raw output.
type EncodeError struct {
	Message string
	Err     error
}

func (e *EncodeError) Error() string {
	return format(e.Message, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

func NewEncode(err error) *EncodeError {
	return &EncodeError{Message: "failed to encode document", Err: err}
}

// ConfigurationError is returned at construction time when a stage cannot be built.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return format(e.Message, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func NewConfiguration(msg string) *ConfigurationError {
	return &ConfigurationError{Message: msg}
}

func NewConfigurationWrap(msg string, err error) *ConfigurationError {
	return &ConfigurationError{Message: msg, Err: err}
}

// SinkWriteError wraps a failed bulk insert against a storage backend.
type SinkWriteError struct {
	Message   string
	BatchSize int
	Err       error
}

func (e *SinkWriteError) Error() string {
	return format(e.Message, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

func NewSinkWrite(batchSize int, err error) *SinkWriteError {
	return &SinkWriteError{Message: "bulk insert failed", BatchSize: batchSize, Err: err}
}

func format(msg string, err error) string {
	if err != nil {
		return msg + ": " + err.Error()
	}
	return msg
}
