package logflags

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMakeLogger_usingLoggerFactory(t *testing.T) {
	if loggerFactory != nil {
		t.Fatalf("expected loggerFactory to be nil; but was <%v>", loggerFactory)
	}
	defer func() {
		loggerFactory = nil
	}()
	logOut = &bufferWriter{}
	defer func() {
		logOut = nil
	}()

	expectedLogger := &logrusLogger{}
	SetLoggerFactory(func(flag bool, fields Fields, out io.Writer) Logger {
		if !flag {
			t.Fatal("expected flag to be true")
		}
		if len(fields) != 1 || fields["foo"] != "bar" {
			t.Fatalf("expected fields to be {'foo':'bar'}; but was <%v>", fields)
		}
		if out != logOut {
			t.Fatalf("expected out to be <%v>; but was <%v>", logOut, out)
		}
		return expectedLogger
	})

	actual := makeLogger(true, logrus.Fields{"foo": "bar"})
	if actual != expectedLogger {
		t.Fatalf("expected actual to be <%v>; but was <%v>", expectedLogger, actual)
	}
}

func TestMakeLogger_usingDefaultBehavior(t *testing.T) {
	if loggerFactory != nil {
		t.Fatalf("expected loggerFactory to be nil; but was <%v>", loggerFactory)
	}
	logOut = &bufferWriter{}
	defer func() {
		logOut = nil
	}()

	actual := makeLogger(false, logrus.Fields{"foo": "bar"})

	actualEntry, ok := actual.(*logrusLogger)
	if !ok {
		t.Fatalf("expected actual to be a *logrusLogger; but was <%T>", actual)
	}
	if actualEntry.Entry.Logger.Level != logrus.PanicLevel {
		t.Fatalf("expected a disabled component to log at PanicLevel; but was <%v>", actualEntry.Entry.Logger.Level)
	}
	if actualEntry.Entry.Logger.Out != logOut {
		t.Fatalf("expected actualEntry.Entry.Logger.Out to be <%v>; but was <%v>", logOut, actualEntry.Entry.Logger.Out)
	}
	if len(actualEntry.Entry.Data) != 1 || actualEntry.Entry.Data["foo"] != "bar" {
		t.Fatalf("expected actualEntry.Entry.Data to be {'foo':'bar'}; but was <%v>", actualEntry.Entry.Data)
	}
}

func TestSetup_logstrWithoutLog(t *testing.T) {
	if err := Setup(false, "server", ""); err != errLogstrWithoutLog {
		t.Fatalf("expected errLogstrWithoutLog; but was <%v>", err)
	}
}

func TestSetup_componentSelection(t *testing.T) {
	defer func() {
		server = false
		client = false
	}()
	if err := Setup(true, "server,client", ""); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if !Server() || !Client() {
		t.Fatalf("expected both components enabled; server=%v client=%v", Server(), Client())
	}
}

type bufferWriter struct {
	bytes.Buffer
}

func (bw *bufferWriter) Close() error {
	return nil
}
