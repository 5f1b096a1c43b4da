package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Server(t *testing.T) {
	tests := []struct {
		name              string
		storeErr          error
		backendErr        error
		wantStatus        int
		wantIsReady       bool
		wantMessageSubstr string
	}{
		{
			"returns 200 with isReady if every dependency is reachable",
			nil,
			nil,
			http.StatusOK,
			true,
			"fully operational",
		},
		{
			"returns 200 with !isReady if the session store is down",
			fmt.Errorf("dial tcp 127.0.0.1:5432: connect: connection refused"),
			nil,
			http.StatusOK,
			false,
			"session store is unavailable, so nobody can log in. (Error: dial tcp 127.0.0.1:5432: connect: connection refused)",
		},
		{
			"session store failure takes precedence",
			fmt.Errorf("mock store error"),
			fmt.Errorf("mock backend error"),
			http.StatusOK,
			false,
			"mock store error",
		},
		{
			"returns 200 with !isReady if the backend is unreachable",
			nil,
			fmt.Errorf("mock backend error"),
			http.StatusOK,
			false,
			"backend API is unreachable. (Error: mock backend error)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(
				func(ctx context.Context) error { return tt.storeErr },
				func(ctx context.Context) error { return tt.backendErr },
			)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			res := httptest.NewRecorder()
			s.ServeHTTP(res, req)

			r := res.Result()
			assert.Equal(t, tt.wantStatus, r.StatusCode)

			var status Status
			err := json.NewDecoder(r.Body).Decode(&status)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantIsReady, status.IsReady)
			assert.Contains(t, status.Message, tt.wantMessageSubstr)
		})
	}
}
