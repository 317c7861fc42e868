package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewTagsService(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug")
	l.SetOutput(&buf)

	l.WithField("session_id", "s1").Info("session accepted")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not json: %v (%q)", err, buf.String())
	}
	if line["service"] != ServiceName || line["session_id"] != "s1" || line["msg"] != "session accepted" {
		t.Fatalf("unexpected entry %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logrus.Level{
		"":         logrus.InfoLevel,
		" DEBUG ":  logrus.DebugLevel,
		"warning":  logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"trace":    logrus.TraceLevel,
		"nonsense": logrus.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
