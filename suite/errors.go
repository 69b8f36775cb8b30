package suite

// ConfigError is the panic value of a suite declared incorrectly
type ConfigError struct {
	Msg string
	Err error // Underlying sentinel, if any
}

func (e *ConfigError) Error() string { return e.Msg }

func (e *ConfigError) Unwrap() error { return e.Err }

func configError(err error, msg string) *ConfigError {
	return &ConfigError{Msg: msg, Err: err}
}
