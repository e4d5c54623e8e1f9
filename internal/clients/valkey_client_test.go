package clients

import (
	"errors"
	"testing"
)

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: errors.New("dial tcp 127.0.0.1:6379: connect: connection refused"), want: true},
		{err: errors.New("read tcp: i/o timeout"), want: true},
		{err: errors.New("unexpected EOF"), want: true},
		{err: errors.New("WRONGTYPE Operation against a key holding the wrong kind of value"), want: false},
	}

	for _, tt := range tests {
		if got := isConnectionError(tt.err); got != tt.want {
			t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
