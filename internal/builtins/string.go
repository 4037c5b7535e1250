package builtins

import (
	"regexp"
	"strings"

	"github.com/DAIOS-AI/mindscript/internal/ast"
	"github.com/DAIOS-AI/mindscript/internal/interp"
	"github.com/DAIOS-AI/mindscript/internal/object"
)

// defineString wires the case-conversion, trimming, splitting and
// pattern-matching functions of string.py.
func defineString(ip *interp.Interpreter) {
	define(ip, "substr", "Substring function.",
		[]ast.Param{param("string", tStr()), param("s", tInt()), param("e", tInt())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			start, _ := asInt(args[1])
			end, _ := asInt(args[2])
			start, end = clampSlice(start, end, int64(len(s)))
			return object.NewValue(s[start:end]), nil
		})

	define(ip, "toUpper", "Converts a string to uppercase.",
		[]ast.Param{param("string", tStr())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			return object.NewValue(strings.ToUpper(s)), nil
		})

	define(ip, "toLower", "Converts a string to lowercase.",
		[]ast.Param{param("string", tStr())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			return object.NewValue(strings.ToLower(s)), nil
		})

	define(ip, "strip", "Removes leading and trailing whitespace.",
		[]ast.Param{param("string", tStr())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			return object.NewValue(strings.TrimSpace(s)), nil
		})

	define(ip, "lstrip", "Removes leading whitespace.",
		[]ast.Param{param("string", tStr())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			return object.NewValue(strings.TrimLeft(s, " \t\n\r\v\f")), nil
		})

	define(ip, "rstrip", "Removes trailing whitespace.",
		[]ast.Param{param("string", tStr())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			return object.NewValue(strings.TrimRight(s, " \t\n\r\v\f")), nil
		})

	define(ip, "split", "Splits a string into a list of strings using a separator.",
		[]ast.Param{param("string", tStr()), param("separator", tStr())}, tArray(tStr()),
		func(args []object.MObject) (object.MObject, error) {
			s, _ := asString(args[0])
			sep, _ := asString(args[1])
			parts := strings.Split(s, sep)
			out := make([]object.MObject, len(parts))
			for i, p := range parts {
				out[i] = object.NewValue(p)
			}
			return object.NewValue(out), nil
		})

	define(ip, "join", "Joins strings into a single string using a separator.",
		[]ast.Param{param("strings", tArray(tStr())), param("separator", tStr())}, tStr(),
		func(args []object.MObject) (object.MObject, error) {
			arr, _ := asArray(args[0])
			sep, _ := asString(args[1])
			parts := make([]string, len(arr))
			for i, e := range arr {
				parts[i], _ = asString(e)
			}
			return object.NewValue(strings.Join(parts, sep)), nil
		})

	define(ip, "match", "Searches for a regex pattern within a string and returns a list of matches.",
		[]ast.Param{param("pattern", tStr()), param("string", tStr())}, opt(tArray(tStr())),
		func(args []object.MObject) (object.MObject, error) {
			pattern, _ := asString(args[0])
			s, _ := asString(args[1])
			re, err := regexp.Compile(pattern)
			if err != nil {
				return object.Null(), nil
			}
			matches := re.FindAllString(s, -1)
			out := make([]object.MObject, len(matches))
			for i, m := range matches {
				out[i] = object.NewValue(m)
			}
			return object.NewValue(out), nil
		})

	define(ip, "replace", "Substitutes a regex pattern with a replacement within a string.",
		[]ast.Param{param("pattern", tStr()), param("replace", tStr()), param("string", tStr())}, opt(tStr()),
		func(args []object.MObject) (object.MObject, error) {
			pattern, _ := asString(args[0])
			repl, _ := asString(args[1])
			s, _ := asString(args[2])
			re, err := regexp.Compile(pattern)
			if err != nil {
				return object.Null(), nil
			}
			return object.NewValue(re.ReplaceAllString(s, repl)), nil
		})
}

// clampSlice normalizes a [s, e) slice range against length the way
// Python's string slicing tolerates out-of-range and negative indices.
func clampSlice(s, e, length int64) (int64, int64) {
	if s < 0 {
		s += length
	}
	if e < 0 {
		e += length
	}
	if s < 0 {
		s = 0
	}
	if e > length {
		e = length
	}
	if s > e {
		s = e
	}
	return s, e
}
