// Package envelope reads fields out of the backend's wrapper responses.
//
// The backend has shipped several envelope layouts, so each field is looked up
// through an ordered list of gjson paths and the first present value wins.
// The lists describe the versions seen so far; they are a compatibility shim,
// not a contract, and new layouts are added at the front.
package envelope

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Path lists tried in order by the lookup helpers.
var (
	TokenPaths = []string{
		"payload.responseData.token",
		"payload.responseData.accessToken",
		"payload.token",
		"responseData.token",
		"data.token",
		"token",
	}
	UserPaths = []string{
		"payload.responseData.user",
		"payload.user",
		"responseData.user",
		"data.user",
		"user",
	}
	DataPaths = []string{
		"payload.responseData",
		"responseData",
		"data",
	}
	StatusPaths = []string{
		"status",
		"payload.status",
		"isSuccess",
		"success",
	}
	MessagePaths = []string{
		"error.message",
		"payload.error.message",
		"message",
		"payload.message",
		"title",
		"error",
	}
)

// First returns the first path in paths that resolves to a non-null value.
func First(body []byte, paths []string) (gjson.Result, bool) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	for _, path := range paths {
		res := gjson.GetBytes(body, path)
		if res.Exists() && res.Type != gjson.Null {
			return res, true
		}
	}
	return gjson.Result{}, false
}

// FirstString returns the first path holding a non-empty string.
func FirstString(body []byte, paths []string) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	for _, path := range paths {
		res := gjson.GetBytes(body, path)
		if res.Type == gjson.String && strings.TrimSpace(res.Str) != "" {
			return res.Str, true
		}
	}
	return "", false
}

// Token extracts the credential token.
func Token(body []byte) (string, bool) {
	return FirstString(body, TokenPaths)
}

// User extracts the raw JSON of the user object.
func User(body []byte) ([]byte, bool) {
	res, ok := First(body, UserPaths)
	if !ok || !res.IsObject() {
		return nil, false
	}
	return []byte(res.Raw), true
}

// Data extracts the raw JSON of the response payload.
func Data(body []byte) ([]byte, bool) {
	res, ok := First(body, DataPaths)
	if !ok {
		return nil, false
	}
	return []byte(res.Raw), true
}

// Message extracts a backend-declared human readable message.
func Message(body []byte) (string, bool) {
	return FirstString(body, MessagePaths)
}

// Status reports whether the envelope declares an outcome and, if so, whether
// it is a success. Booleans map directly, numbers succeed for 1 and 2xx, and
// strings succeed for the usual success words.
func Status(body []byte) (declared, success bool) {
	res, ok := First(body, StatusPaths)
	if !ok {
		return false, false
	}
	switch res.Type {
	case gjson.True:
		return true, true
	case gjson.False:
		return true, false
	case gjson.Number:
		n := res.Int()
		return true, n == 1 || (n >= 200 && n < 300)
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(res.Str)) {
		case "success", "succeeded", "ok", "true", "created":
			return true, true
		default:
			return true, false
		}
	default:
		return false, false
	}
}
