package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool
	UseConsoleWriter bool
	NoColor          bool
}

// Rotation describes one rolling log file.
type Rotation struct {
	Name       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// LogFile implements a file based logger.
type LogFile struct {
	// Used outside of containers only.
	Enabled bool
	Path    string

	Access Rotation
	Error  Rotation
	Info   Rotation
	Trace  Rotation
	Warn   Rotation
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.

	// EnableAccessLogToConsole if true the webserver logs every request to the console.
	// Does not overrule flag Console.Enabled!
	// If Console.Enabled is false, still no access log output to the console will be shown.
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableHealthLog         bool // do not log health probe calls

	AppName     string
	ServiceName string

	// Console used mainly for containers and dev.
	Console Console

	File LogFile
}
