package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLineFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logrus.InfoLevel)

	logger.Info("Blurred.")
	logger.Warn("No commands were passed after an image.")
	logger.WithField("run_id", "abc").WithField("attempt", 2).Error("boom")
	logger.Debug("hidden")

	assert.Equal(t,
		"[INFO] Blurred.\n"+
			"[WARN] No commands were passed after an image.\n"+
			"[ERROR] boom attempt=2 run_id=abc\n",
		buf.String(),
	)
}

func TestLevelGatesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, logrus.WarnLevel)

	logger.Info("quiet")
	assert.Empty(t, buf.String())

	logger.SetLevel(logrus.InfoLevel)
	logger.Info("loud")
	assert.Equal(t, "[INFO] loud\n", buf.String())
}
