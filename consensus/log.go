package consensus

import (
	"io"
	"os"

	"github.com/jrick/logrotate/rotator"
	"github.com/sirupsen/logrus"
)

// log is the package's subsystem-tagged logger, replacing the teacher's
// hand-rolled backendLog.Logger("TAG") idiom (logger/logger.go) with a
// logrus field, since the teacher's own "logs" backend package did not
// survive the retrieval pack and logrus recurs across the wider example
// corpus (see SPEC_FULL.md §10.2).
var log = logrus.WithField("subsystem", "CNSS")

// logRotator is the optional rotating file sink, wired in exactly where
// the teacher wires its own LogRotator (logger/logger.go): behind
// jrick/logrotate, fed by an io.MultiWriter alongside stdout.
var logRotator *rotator.Rotator

// InitLogging points the package logger at a rotating file under dir, in
// addition to stdout, mirroring logger.InitLogRotators.
func InitLogging(dir, filename string, maxRolls int) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	r, err := rotator.New(dir+string(os.PathSeparator)+filename, 10*1024, false, maxRolls)
	if err != nil {
		return err
	}
	logRotator = r
	logrus.SetOutput(io.MultiWriter(os.Stdout, r))
	return nil
}

// SetLevel adjusts the package logger's verbosity (debug/info/warn/error),
// standing in for the teacher's per-subsystem SetLogLevel.
func SetLevel(level logrus.Level) {
	logrus.SetLevel(level)
}
