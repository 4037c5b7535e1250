package oracle_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewOpenAI_RequiresAPIKeyAndModel(t *testing.T) {
	os.Unsetenv("OPENAI_API_KEY")
	_, err := oracle.NewOpenAI("", "gpt-4o-mini")
	require.Error(t, err, "expected an error when OPENAI_API_KEY is unset")

	os.Setenv("OPENAI_API_KEY", "sk-test")
	defer os.Unsetenv("OPENAI_API_KEY")
	_, err = oracle.NewOpenAI("", "")
	require.Error(t, err, "expected an error when no model is given")

	b, err := oracle.NewOpenAI("", "gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", b.URL())
}

func TestOpenAI_PreprocessEncodesMessage(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "sk-test")
	defer os.Unsetenv("OPENAI_API_KEY")
	b, err := oracle.NewOpenAI("http://example.test", "gpt-4o-mini")
	require.NoError(t, err)

	headers, body, err := b.Preprocess("hello", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test", headers["Authorization"])
	assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(body, "model").String())
	assert.Equal(t, "hello", gjson.GetBytes(body, "messages.0.content").String())
}

func TestOpenAI_PostprocessExtractsContent(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "sk-test")
	defer os.Unsetenv("OPENAI_API_KEY")
	b, err := oracle.NewOpenAI("", "gpt-4o-mini")
	require.NoError(t, err)

	res := gjson.Parse(`{"choices": [{"message": {"content": "42"}}]}`)
	text, err := b.Postprocess(res)
	require.NoError(t, err)
	assert.Equal(t, "42", text)

	_, err = b.Postprocess(gjson.Parse(`{}`))
	assert.Error(t, err, "expected an error when the expected field is missing")
}

func TestNewOllama_RequiresModel(t *testing.T) {
	_, err := oracle.NewOllama("", "")
	require.Error(t, err)

	b, err := oracle.NewOllama("", "llama3")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/api/generate", b.URL())
}

func TestOllama_PreprocessEmbedsSchemaAsFormat(t *testing.T) {
	b, err := oracle.NewOllama("http://example.test", "llama3")
	require.NoError(t, err)
	_, body, err := b.Preprocess("hi", "", map[string]any{"type": "integer"})
	require.NoError(t, err)
	assert.Equal(t, "integer", gjson.GetBytes(body, "format.type").String())
	assert.False(t, gjson.GetBytes(body, "stream").Bool())
}

func TestOllama_PostprocessExtractsResponse(t *testing.T) {
	b, _ := oracle.NewOllama("", "llama3")
	text, err := b.Postprocess(gjson.Parse(`{"response": "7"}`))
	require.NoError(t, err)
	assert.Equal(t, "7", text)
}

func TestNewLlamaCPP_DefaultsURL(t *testing.T) {
	b := oracle.NewLlamaCPP("")
	assert.Equal(t, "http://localhost:8080/completion", b.URL())

	b2 := oracle.NewLlamaCPP("http://example.test/completion")
	assert.Equal(t, "http://example.test/completion", b2.URL())
}

func TestLlamaCPP_PreprocessEmbedsGrammar(t *testing.T) {
	b := oracle.NewLlamaCPP("")
	_, body, err := b.Preprocess("hi", "root ::= integer", nil)
	require.NoError(t, err)
	assert.Equal(t, "root ::= integer", gjson.GetBytes(body, "grammar").String())
	assert.EqualValues(t, 1000, gjson.GetBytes(body, "n_predict").Int())
}

func TestLlamaCPP_PostprocessExtractsContent(t *testing.T) {
	b := oracle.NewLlamaCPP("")
	text, err := b.Postprocess(gjson.Parse(`{"content": "done"}`))
	require.NoError(t, err)
	assert.Equal(t, "done", text)
}

func TestConsult_RoundTripsThroughHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"content": "3"}`))
	}))
	defer srv.Close()

	b := oracle.NewLlamaCPP(srv.URL)
	text, err := oracle.Consult(b, "what is 1+2?", "root ::= integer", nil)
	require.NoError(t, err)
	assert.Equal(t, "3", text)
}

func TestConsult_PropagatesHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	b := oracle.NewLlamaCPP(srv.URL)
	_, err := oracle.Consult(b, "x", "", nil)
	assert.Error(t, err)
}
