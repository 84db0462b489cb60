package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wecisecode/collections/logger"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New()
	log.SetConsoleOut(&buf)
	log.SetColor(false)
	log.SetLevel(logger.WARN)

	log.Debug("hidden")
	log.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "[W]")
}

func TestSetLevelByName(t *testing.T) {
	log := logger.New()
	log.SetLevel("error")
	lv, _ := log.Level()
	assert.Equal(t, logger.ERROR, lv)

	log.SetLevel(logger.DEBUG)
	lv, name := log.Level()
	assert.Equal(t, logger.DEBUG, lv)
	assert.Equal(t, logger.LevelDEBUG, name)
}

func TestUserdefineFormat(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New()
	log.SetConsoleOut(&buf)
	log.SetColor(false)
	log.SetFormat("level file:line msg", "\n")
	log.AddFormat("tag", func(b *[]byte, fa *logger.FmtArgs) {
		*b = append(*b, "collections"...)
	})

	log.Infof("n=%d", 7)

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "I "), line)
	assert.Contains(t, line, "logger_test.go:")
	assert.True(t, strings.HasSuffix(line, "n=7"), line)

	buf.Reset()
	log.SetFormat("tag msg", "\n")
	log.Info("x")
	assert.Equal(t, "collections x", strings.TrimSpace(buf.String()))
}

func TestConsoleOffDiscardsEverything(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New()
	log.SetConsoleOut(&buf)

	log.SetConsole(false)
	log.Fatal("nope")
	assert.Zero(t, buf.Len())

	log.SetConsoleOut(&buf)
	log.Fatal("yes")
	assert.Contains(t, buf.String(), "yes")
}
