package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 7, 25, 12, 20, 1, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: LOGIN_FAILED, Description: wrong password",
		Data:    logrus.Fields{"username": "admin"},
	}
	out, err := (&CustomFormatter{SystemName: "tracker-service"}).Format(entry)
	require.NoError(t, err)

	line := string(out)
	assert.True(t, strings.HasPrefix(line, "Date: 2024-07-25, Time: 12:20:01, Event Source: tracker-service, Event Type: WARNING, Event ID: "))
	assert.Contains(t, line, "Message: Event ID: LOGIN_FAILED, Description: wrong password")
	assert.Contains(t, line, ", username: admin")
	assert.True(t, strings.HasSuffix(line, "\n"))
}
