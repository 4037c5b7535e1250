// Package oracle implements MindScript's oracle functions: callables
// whose body is synthesized per call by an LLM backend, constrained by
// a JSON Schema and a GBNF grammar derived from the function's declared
// types (spec §4.6). Grounded on
// _examples/original_source/src/mindscript/oracle.py and backend.py.
package oracle

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// consultTimeout bounds a single backend round-trip (backend.py's
// TIMEOUT = 20).
const consultTimeout = 20 * time.Second

// Backend is an LLM completion provider an oracle function consults to
// synthesize its return value. Each concrete backend shapes the HTTP
// request for its API and extracts the generated text from the
// response, mirroring backend.py's abstract preprocess/postprocess
// pair.
//
// The transport itself (consult, below) is plain net/http: this is a
// single synchronous POST-and-decode round trip with no connection
// pooling, retry, or streaming requirements that would justify an HTTP
// client library from the example pack, so the standard library is the
// right tool here (see DESIGN.md).
type Backend interface {
	URL() string
	Preprocess(prompt, grammar string, schema map[string]any) (headers map[string]string, body []byte, err error)
	Postprocess(res gjson.Result) (string, error)
}

// Consult posts prompt (constrained by grammar and/or schema, whichever
// the backend uses) to backend and returns the generated completion
// text, ready for the interpreter to parse and evaluate.
func Consult(backend Backend, prompt, grammar string, schema map[string]any) (string, error) {
	if backend == nil {
		return "", fmt.Errorf("no oracle backend configured")
	}
	headers, raw, err := backend.Preprocess(prompt, grammar, schema)
	if err != nil {
		return "", fmt.Errorf("encoding oracle request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, backend.URL(), bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("building oracle request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: consultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error: connection for %s: %w", backend.URL(), err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", fmt.Errorf("error: reading response from %s: %w", backend.URL(), err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("error: HTTP %d from %s", resp.StatusCode, backend.URL())
	}
	if !gjson.ValidBytes(buf.Bytes()) {
		return "", fmt.Errorf("error: JSON decode failure of %s", buf.String())
	}
	return backend.Postprocess(gjson.ParseBytes(buf.Bytes()))
}

// OpenAI targets the OpenAI-compatible chat-completions API.
type OpenAI struct {
	url         string
	model       string
	apiKey      string
	temperature float64
}

// NewOpenAI creates an OpenAI backend. url defaults to OpenAI's public
// endpoint when empty; the API key is read from OPENAI_API_KEY.
func NewOpenAI(url, model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("the environment variable OPENAI_API_KEY is not set")
	}
	if model == "" {
		return nil, errors.New("the OpenAI backend requires a model name")
	}
	if url == "" {
		url = "https://api.openai.com/v1/chat/completions"
	}
	return &OpenAI{url: url, model: model, apiKey: key, temperature: 0.7}, nil
}

func (b *OpenAI) URL() string { return b.url }

func (b *OpenAI) Preprocess(prompt, _ string, _ map[string]any) (map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + b.apiKey,
	}
	body, err := sjson.SetBytes(nil, "model", b.model)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "messages.0.role", "user")
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "messages.0.content", prompt)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "temperature", b.temperature)
	if err != nil {
		return nil, nil, err
	}
	return headers, body, nil
}

func (b *OpenAI) Postprocess(res gjson.Result) (string, error) {
	content := res.Get("choices.0.message.content")
	if !content.Exists() {
		return "", fmt.Errorf("error: unexpected reply: %s", res.Raw)
	}
	return content.String(), nil
}

// Ollama targets a local Ollama server's /api/generate endpoint, using
// its native structured-output `format` field for schema constraints.
type Ollama struct {
	url   string
	model string
}

// NewOllama creates an Ollama backend. url defaults to the local
// Ollama server when empty.
func NewOllama(url, model string) (*Ollama, error) {
	if model == "" {
		return nil, errors.New("the Ollama backend requires a model name")
	}
	if url == "" {
		url = "http://localhost:11434/api/generate"
	}
	return &Ollama{url: url, model: model}, nil
}

func (b *Ollama) URL() string { return b.url }

func (b *Ollama) Preprocess(prompt, _ string, schema map[string]any) (map[string]string, []byte, error) {
	headers := map[string]string{"Content-Type": "application/json"}
	body, err := sjson.SetBytes(nil, "model", b.model)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "prompt", prompt)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "stream", false)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "format", schema)
	if err != nil {
		return nil, nil, err
	}
	return headers, body, nil
}

func (b *Ollama) Postprocess(res gjson.Result) (string, error) {
	response := res.Get("response")
	if !response.Exists() {
		return "", fmt.Errorf("error: unexpected reply: %s", res.Raw)
	}
	return response.String(), nil
}

// LlamaCPP targets a llama.cpp server's /completion endpoint, using its
// GBNF `grammar` field for constrained decoding.
type LlamaCPP struct {
	url           string
	maxTokens     int
	repeatPenalty float64
}

// NewLlamaCPP creates a LlamaCPP backend. url defaults to the local
// llama.cpp server when empty.
func NewLlamaCPP(url string) *LlamaCPP {
	if url == "" {
		url = "http://localhost:8080/completion"
	}
	return &LlamaCPP{url: url, maxTokens: 1000, repeatPenalty: 1.5}
}

func (b *LlamaCPP) URL() string { return b.url }

func (b *LlamaCPP) Preprocess(prompt, grammar string, _ map[string]any) (map[string]string, []byte, error) {
	headers := map[string]string{"Content-Type": "application/json"}
	body, err := sjson.SetBytes(nil, "prompt", prompt)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "grammar", grammar)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "n_predict", b.maxTokens)
	if err != nil {
		return nil, nil, err
	}
	body, err = sjson.SetBytes(body, "repeat_penalty", b.repeatPenalty)
	if err != nil {
		return nil, nil, err
	}
	return headers, body, nil
}

func (b *LlamaCPP) Postprocess(res gjson.Result) (string, error) {
	content := res.Get("content")
	if !content.Exists() {
		return "", fmt.Errorf("error: unexpected reply: %s", res.Raw)
	}
	return content.String(), nil
}
