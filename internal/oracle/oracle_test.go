package oracle_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/lexer"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/DAIOS-AI/mindscript/internal/oracle"
	"github.com/DAIOS-AI/mindscript/internal/parser"
	"github.com/stretchr/testify/require"
)

// parseReturnType parses a bare type expression for an oracle function's
// return type by parsing it as the body of a `type` definition.
func parseReturnType(t *testing.T, src string) ast.TypeExpr {
	t.Helper()
	p := parser.New(lexer.New(), false)
	prog, err := p.Parse("type "+src, "t")
	require.NoError(t, err)
	return prog.Statements[0].(*ast.TypeDefinition).Type
}

func TestOracle_InvokeParsesBackendCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": "4"}`))
	}))
	defer srv.Close()

	rt := interp.New(nil, false)
	params := []ast.Param{{Name: "n", Type: parseReturnType(t, "Int")}}
	fn, err := oracle.New(rt, rt.Env, params, parseReturnType(t, "Int"), nil, "double the input", oracle.NewLlamaCPP(srv.URL))
	require.NoError(t, err)

	result, err := fn.Call([]object.MObject{object.NewValue(int64(2))}, nil)
	require.NoError(t, err)
	v, ok := result.(*object.MValue)
	require.True(t, ok)
	require.Equal(t, int64(4), v.Value)
}

func TestOracle_BackendErrorYieldsAnnotatedNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rt := interp.New(nil, false)
	params := []ast.Param{{Name: "n", Type: parseReturnType(t, "Int")}}
	fn, err := oracle.New(rt, rt.Env, params, parseReturnType(t, "Int"), nil, "", oracle.NewLlamaCPP(srv.URL))
	require.NoError(t, err)

	result, err := fn.Call([]object.MObject{object.NewValue(int64(2))}, nil)
	require.NoError(t, err, "a backend failure degrades to a null result, not a call error")
	require.True(t, object.IsNull(result))
	require.NotEmpty(t, result.Annotation(), "expected the failure reason to be carried as an annotation")
}

func TestOracle_ReturnTypeIsWidenedToOptional(t *testing.T) {
	rt := interp.New(nil, false)
	params := []ast.Param{{Name: "n", Type: parseReturnType(t, "Int")}}
	fn, err := oracle.New(rt, rt.Env, params, parseReturnType(t, "Int"), nil, "", oracle.NewLlamaCPP(""))
	require.NoError(t, err)
	_, ok := fn.OutType().Definition.(*ast.TypeUnary)
	require.True(t, ok, "expected an oracle's declared Int return type to widen to Int?")
}

func TestOracle_RejectsMalformedExamples(t *testing.T) {
	rt := interp.New(nil, false)
	params := []ast.Param{{Name: "n", Type: parseReturnType(t, "Int")}}
	badExamples := object.NewValue([]object.MObject{
		object.NewValue([]object.MObject{object.NewValue(int64(1))}), // too short: needs [input, output]
	})
	_, err := oracle.New(rt, rt.Env, params, parseReturnType(t, "Int"), badExamples, "", oracle.NewLlamaCPP(""))
	require.Error(t, err)
}

func TestOracle_AcceptsWellTypedExamples(t *testing.T) {
	rt := interp.New(nil, false)
	params := []ast.Param{{Name: "n", Type: parseReturnType(t, "Int")}}
	examples := object.NewValue([]object.MObject{
		object.NewValue([]object.MObject{object.NewValue(int64(1)), object.NewValue(int64(2))}),
	})
	_, err := oracle.New(rt, rt.Env, params, parseReturnType(t, "Int"), examples, "", oracle.NewLlamaCPP(""))
	require.NoError(t, err)
}
