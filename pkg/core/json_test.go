package core

import (
	"errors"
	"testing"
	"time"
)

func TestJSONEncode(t *testing.T) {
	data, err := JSONEncode(map[string]int{"answer": 42})
	if err != nil {
		t.Fatalf("JSONEncode() error = %v", err)
	}
	if string(data) != `{"answer":42}` {
		t.Errorf("JSONEncode() = %s, want {\"answer\":42}", data)
	}
}

func TestJSONEncode_NilFails(t *testing.T) {
	_, err := JSONEncode(nil)
	if err == nil {
		t.Error("JSONEncode(nil) should fail")
	}
}

func TestJSONDecode(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	if err := JSONDecode([]byte(`{"name":"isopod"}`), &out); err != nil {
		t.Fatalf("JSONDecode() error = %v", err)
	}
	if out.Name != "isopod" {
		t.Errorf("JSONDecode() name = %q, want isopod", out.Name)
	}
}

func TestJSONDecode_EmptyFails(t *testing.T) {
	var out int
	if err := JSONDecode(nil, &out); err == nil {
		t.Error("JSONDecode(empty) should fail")
	}
}

func TestJSONRoundTrip_ProducesIndependentValue(t *testing.T) {
	original := map[string][]int{"xs": {1, 2, 3}}
	data, err := JSONEncode(original)
	if err != nil {
		t.Fatalf("JSONEncode() error = %v", err)
	}

	var decoded map[string][]int
	if err := JSONDecode(data, &decoded); err != nil {
		t.Fatalf("JSONDecode() error = %v", err)
	}

	decoded["xs"][0] = 99
	if original["xs"][0] != 1 {
		t.Error("decoded value shares memory with the original")
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		code string
	}{
		{ErrSpawnFailed, "SPAWN_FAILED"},
		{ErrTimeout, "REQUEST_TIMEOUT"},
		{ErrWorkerClosed, "WORKER_CLOSED"},
		{ErrChannelClosed, "CHANNEL_CLOSED"},
		{ErrCoordinatorClosed, "COORDINATOR_CLOSED"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Error() == "" {
				t.Error("Error() should not be empty")
			}
		})
	}
}

func TestPayloadError_PreservesDescription(t *testing.T) {
	inner := errors.New("file not found: data.csv")
	err := asPayloadError(inner)

	perr, ok := err.(*PayloadError)
	if !ok {
		t.Fatalf("asPayloadError() = %T, want *PayloadError", err)
	}
	if perr.Description != inner.Error() {
		t.Errorf("Description = %q, want %q", perr.Description, inner.Error())
	}

	// Already-tagged errors pass through unchanged
	if again := asPayloadError(err); again != err {
		t.Error("asPayloadError() should not re-wrap a PayloadError")
	}
}

func TestValidateTimeout(t *testing.T) {
	if err := ValidateTimeout(0); err != nil {
		t.Errorf("ValidateTimeout(0) error = %v, zero means no deadline", err)
	}
	if err := ValidateTimeout(time.Second); err != nil {
		t.Errorf("ValidateTimeout(1s) error = %v", err)
	}
	if err := ValidateTimeout(-1); err == nil {
		t.Error("ValidateTimeout(-1) should fail")
	}
}
