package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New создает логгер сервера: JSON в stdout
func New(logLevel string) *logrus.Logger {
	return build(logLevel, &logrus.JSONFormatter{}, os.Stdout)
}

// NewText создает логгер для CLI: человекочитаемый текст в stderr,
// чтобы не смешиваться с выводом команды
func NewText(logLevel string) *logrus.Logger {
	return build(logLevel, &logrus.TextFormatter{DisableTimestamp: true}, os.Stderr)
}

func build(logLevel string, formatter logrus.Formatter, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(formatter)
	log.SetOutput(out)

	// Уровень логирования
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel // Уровень по умолчанию, если передан некорректный
	}
	log.SetLevel(level)
	return log
}
