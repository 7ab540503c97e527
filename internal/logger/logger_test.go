package logger_test

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/chemiclast/rasorite/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DebugLevel, logger.ParseLevel("debug"))
	assert.Equal(t, logger.InfoLevel, logger.ParseLevel("info"))
	assert.Equal(t, logger.WarnLevel, logger.ParseLevel("warning"))
	assert.Equal(t, logger.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, logger.WarnLevel, logger.ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "warning")
	defer logger.Init("warning")

	logger.Debug().Msg("hidden debug line")
	logger.Warn().Msg("visible warn line")

	assert.NotContains(t, buf.String(), "hidden debug line")
	assert.Contains(t, buf.String(), "visible warn line")
}

func TestErrorWithCode(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "debug")
	defer logger.Init("warning")

	err := errors.New().Wrap(errors.ErrRenderChart, stderrors.New("disk full"))
	logger.Default().ErrorWithCode(err).Msg("render failed")

	out := buf.String()
	assert.Contains(t, out, "render_chart_failed")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "render failed")
}
