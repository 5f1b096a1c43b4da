package sse

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Stream(t *testing.T) {
	tests := []struct {
		name       string
		accept     string
		wantStatus int
		wantErr    error
	}{
		{"no accept header", "", http.StatusOK, nil},
		{"wildcard", "*/*", http.StatusOK, nil},
		{"event stream", "text/event-stream", http.StatusOK, nil},
		{"json is rejected", "application/json", http.StatusBadRequest, ErrNotAcceptable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("accept", tt.accept)
			}
			res := httptest.NewRecorder()
			stream, err := Open(res, req)
			assert.Equal(t, tt.wantStatus, res.Code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stream)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "text/event-stream", res.Header().Get("content-type"))

			assert.NoError(t, stream.Send(map[string]int{"remaining": 3}))
			stream.Keepalive()
			assert.Equal(t, "data: {\"remaining\":3}\n\n:\n\n", res.Body.String())
		})
	}
}
