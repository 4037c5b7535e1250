package builtins

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
	"github.com/tidwall/gjson"
)

// defineNetwork wires the scripting-level HTTP client (network.py's
// HTTP class), using the standard library's net/http for the same
// reason internal/oracle's backend transport does: one request, one
// response, no pooling or streaming needs.
func defineNetwork(ip *interp.Interpreter) {
	params := tObject()
	define(ip, "http", "Makes an HTTP request.",
		[]ast.Param{
			param("params", opt(params)),
			param("method", opt(tStr())),
			param("url", tStr()),
		}, tObject(),
		func(args []object.MObject) (object.MObject, error) {
			return doHTTP(args[0], args[1], args[2])
		})
}

func doHTTP(paramsArg, methodArg, urlArg object.MObject) (object.MObject, error) {
	url, _ := asString(urlArg)
	method, ok := asString(methodArg)
	if !ok || method == "" {
		method = "GET"
	}

	var bodyReader io.Reader
	headers := map[string]string{}
	if m, ok := asMap(paramsArg); ok {
		if h, ok := m["headers"]; ok {
			if hm, ok := asMap(h); ok {
				for k, v := range hm {
					if s, ok := asString(v); ok {
						headers[k] = s
					}
				}
			}
		}
		if b, ok := m["body"]; ok {
			raw, err := object.Unwrap(b, true)
			if err == nil && raw != nil {
				enc, err := json.Marshal(raw)
				if err == nil {
					bodyReader = bytes.NewReader(enc)
					if _, present := headers["Content-Type"]; !present {
						headers["Content-Type"] = "application/json"
					}
				}
			}
		}
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return errResult("Connection error", err.Error()), nil
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 20 * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return errResult("Connection error", err.Error()), nil
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errResult("Connection error", err.Error()), nil
	}

	respHeaders := map[string]object.MObject{}
	for k := range resp.Header {
		respHeaders[k] = object.NewValue(resp.Header.Get(k))
	}

	result := map[string]object.MObject{
		"statusCode": object.NewValue(int64(resp.StatusCode)),
		"headers":    object.NewValue(respHeaders),
		"elapsedMs":  object.NewValue(float64(elapsed.Microseconds()) / 1000.0),
		"text":       object.NewValue(string(raw)),
		"url":        object.NewValue(url),
	}
	if resp.Header.Get("Content-Type") == "application/json" && gjson.ValidBytes(raw) {
		wrapped, err := jsonToMObject(gjson.ParseBytes(raw))
		if err == nil {
			result["json"] = wrapped
		}
	}
	return object.NewValue(result), nil
}

func errResult(kind, detail string) object.MObject {
	return object.NewValue(map[string]object.MObject{
		"error":  object.NewValue(kind),
		"detail": object.NewValue(detail),
	})
}

func jsonToMObject(r gjson.Result) (object.MObject, error) {
	switch {
	case r.IsArray():
		var out []object.MObject
		var err error
		r.ForEach(func(_, v gjson.Result) bool {
			var w object.MObject
			w, err = jsonToMObject(v)
			out = append(out, w)
			return err == nil
		})
		if err != nil {
			return nil, err
		}
		return object.NewValue(out), nil
	case r.IsObject():
		out := map[string]object.MObject{}
		var err error
		r.ForEach(func(k, v gjson.Result) bool {
			var w object.MObject
			w, err = jsonToMObject(v)
			out[k.String()] = w
			return err == nil
		})
		if err != nil {
			return nil, err
		}
		return object.NewValue(out), nil
	case r.Type == gjson.Null:
		return object.Null(), nil
	case r.Type == gjson.True || r.Type == gjson.False:
		return object.NewValue(r.Bool()), nil
	case r.Type == gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return object.NewValue(int64(r.Num)), nil
		}
		return object.NewValue(r.Num), nil
	default:
		return object.NewValue(r.String()), nil
	}
}
