package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenTriesPathsInOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{name: "nested payload", body: `{"payload":{"responseData":{"token":"T1"}}}`, want: "T1", ok: true},
		{name: "data wrapper", body: `{"data":{"token":"T2"}}`, want: "T2", ok: true},
		{name: "top level", body: `{"token":"T3"}`, want: "T3", ok: true},
		{name: "first wins", body: `{"token":"outer","payload":{"responseData":{"token":"inner"}}}`, want: "inner", ok: true},
		{name: "empty string skipped", body: `{"payload":{"responseData":{"token":""}},"token":"T4"}`, want: "T4", ok: true},
		{name: "missing", body: `{"payload":{"responseData":{}}}`, ok: false},
		{name: "not json", body: `<html>`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Token([]byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRequiresObject(t *testing.T) {
	raw, ok := User([]byte(`{"payload":{"responseData":{"user":{"id":1,"name":"A"}}}}`))
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":1,"name":"A"}`, string(raw))

	_, ok = User([]byte(`{"user":"A"}`))
	assert.False(t, ok)
}

func TestData(t *testing.T) {
	raw, ok := Data([]byte(`{"payload":{"responseData":42}}`))
	assert.True(t, ok)
	assert.Equal(t, "42", string(raw))

	_, ok = Data([]byte(`{"payload":{"responseData":null}}`))
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		body     string
		declared bool
		success  bool
	}{
		{`{"status":true}`, true, true},
		{`{"status":false}`, true, false},
		{`{"status":200}`, true, true},
		{`{"status":400}`, true, false},
		{`{"status":"Success"}`, true, true},
		{`{"status":"error"}`, true, false},
		{`{"isSuccess":true}`, true, true},
		{`{"payload":{}}`, false, false},
	}
	for _, tt := range tests {
		declared, success := Status([]byte(tt.body))
		assert.Equal(t, tt.declared, declared, tt.body)
		assert.Equal(t, tt.success, success, tt.body)
	}
}

func TestMessagePrefersNestedError(t *testing.T) {
	msg, ok := Message([]byte(`{"message":"top","error":{"message":"nested"}}`))
	assert.True(t, ok)
	assert.Equal(t, "nested", msg)

	msg, ok = Message([]byte(`{"error":"plain"}`))
	assert.True(t, ok)
	assert.Equal(t, "plain", msg)

	_, ok = Message([]byte(`{"error":{"code":3}}`))
	assert.False(t, ok)
}
