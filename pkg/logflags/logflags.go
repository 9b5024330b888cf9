// Package logflags selects which components of pine produce debug output,
// based on the --log and --log-output command line flags.
package logflags

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	server = false
	client = false
)

var logOut io.WriteCloser

func makeLogger(flag bool, fields logrus.Fields) Logger {
	lf := loggerFactory
	if lf == nil {
		lf = defaultLoggerFactory
	}
	return lf(flag, Fields(fields), logOut)
}

func defaultLoggerFactory(flag bool, fields Fields, out io.Writer) Logger {
	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{DisableColors: true}
	logger.Level = logrus.DebugLevel
	if !flag {
		logger.Level = logrus.PanicLevel
	}
	if out != nil {
		logger.Out = out
	}
	return &logrusLogger{logger.WithFields(logrus.Fields(fields))}
}

// Server returns true if the IPC server should log.
func Server() bool {
	return server
}

// ServerLogger returns a logger for the IPC server: listener lifecycle,
// accept errors and per-connection dispatch outcomes.
func ServerLogger() Logger {
	return makeLogger(server, logrus.Fields{"layer": "ipcserver"})
}

// Client returns true if the IPC client should log.
func Client() bool {
	return client
}

// ClientLogger returns a logger for the IPC client.
func ClientLogger() Logger {
	return makeLogger(client, logrus.Fields{"layer": "ipcclient"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the component flags based on the contents of logstr and
// redirects output to logDest, which is either a file descriptor number or a
// file path.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			logOut = os.NewFile(uintptr(n), "pine-logs")
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			logOut = fh
		}
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(io.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "server"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch logcmd {
		case "server":
			server = true
		case "client":
			client = true
		}
	}
	return nil
}

// Close closes the log output destination, if one was configured.
func Close() {
	if logOut != nil {
		logOut.Close()
	}
}
