package ports

import "github.com/Oskait/CoCa/pkg/log"

// Logger is the structured logging port used by the inner layers.
// It aliases the public pkg/log interface so internal packages do not
// import the logging implementation directly.
type Logger = log.Logger

// Field is a key-value pair attached to a log message.
type Field = log.Field
