package cmd

import (
	"github.com/DAIOS-AI/mindscript/internal/oracle"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// tracingBackend wraps a Backend with structured request/response
// logging, enabled by --trace. The interpreter hot path itself never
// logs (internal/interp returns errors to its caller); this logging
// lives entirely at the CLI boundary.
type tracingBackend struct {
	oracle.Backend
	log *logrus.Logger
}

func newTracingBackend(backend oracle.Backend) oracle.Backend {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	return &tracingBackend{Backend: backend, log: log}
}

func (b *tracingBackend) Preprocess(prompt, grammar string, schema map[string]any) (map[string]string, []byte, error) {
	headers, body, err := b.Backend.Preprocess(prompt, grammar, schema)
	fields := logrus.Fields{"url": b.Backend.URL(), "prompt_len": len(prompt)}
	if err != nil {
		b.log.WithFields(fields).WithError(err).Debug("oracle request encoding failed")
		return headers, body, err
	}
	b.log.WithFields(fields).WithField("body", string(body)).Debug("oracle request")
	return headers, body, nil
}

func (b *tracingBackend) Postprocess(res gjson.Result) (string, error) {
	text, err := b.Backend.Postprocess(res)
	fields := logrus.Fields{"url": b.Backend.URL(), "raw": res.Raw}
	if err != nil {
		b.log.WithFields(fields).WithError(err).Debug("oracle response decoding failed")
		return text, err
	}
	b.log.WithFields(fields).WithField("text", text).Debug("oracle response")
	return text, nil
}
