package retry

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

func TestClassifier_TypedErrorsAreFatal(t *testing.T) {
	identity := pgiamauth.ConnectionIdentity{
		Region: "us-east-1", Host: "db.example.com", Port: "5432", Username: "app",
	}

	tests := []struct {
		name string
		err  error
	}{
		{
			name: "config error",
			err:  &pgiamauth.ConfigError{Option: "region"},
		},
		{
			name: "url parse error",
			err:  &pgiamauth.URLParseError{URL: "jdbc:postgresql://:5432/db", Reason: "host must not be empty"},
		},
		{
			name: "auth error",
			err:  &pgiamauth.AuthError{Identity: identity, Err: errors.New("denied")},
		},
		{
			name: "auth error hiding a network cause",
			err: &pgiamauth.AuthError{Identity: identity, Err: &net.OpError{
				Op: "dial", Err: syscall.ECONNREFUSED,
			}},
		},
		{
			name: "wrapped config error",
			err:  fmt.Errorf("check failed: %w", &pgiamauth.ConfigError{Option: "user"}),
		},
	}

	classifier := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if classifier.IsTransient(tt.err) {
				t.Errorf("IsTransient(%v) = true, want false", tt.err)
			}
		})
	}
}

func TestClassifier_TransientPgCodes(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "connection failure", code: "08006", want: true},
		{name: "cannot connect now", code: "57P03", want: true},
		{name: "too many connections", code: "53300", want: true},
		{name: "serialization failure", code: "40001", want: true},
		{name: "deadlock detected", code: "40P01", want: true},
		{name: "lock not available", code: "55P03", want: true},
		{name: "invalid password", code: "28P01", want: false},
		{name: "undefined table", code: "42P01", want: false},
		{name: "syntax error", code: "42601", want: false},
	}

	classifier := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code, Message: tt.name}
			if got := classifier.IsTransient(err); got != tt.want {
				t.Errorf("IsTransient(code %s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifier_TransientPgCodeInsideConnectionError(t *testing.T) {
	classifier := NewErrorClassifier()

	err := &pgiamauth.ConnectionError{
		Host: "db.example.com",
		Port: "5432",
		Err:  &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"},
	}
	if !classifier.IsTransient(err) {
		t.Error("startup error wrapped in ConnectionError should be transient")
	}

	err = &pgiamauth.ConnectionError{
		Host: "db.example.com",
		Port: "5432",
		Err:  &pgconn.PgError{Code: "28P01", Message: "password authentication failed"},
	}
	if classifier.IsTransient(err) {
		t.Error("rejected password wrapped in ConnectionError should be fatal")
	}
}

func TestClassifier_NetworkErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			want: true,
		},
		{
			name: "connection reset",
			err:  &net.OpError{Op: "read", Err: syscall.ECONNRESET},
			want: true,
		},
		{
			name: "host unreachable",
			err:  &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH},
			want: true,
		},
		{
			name: "temporary dns failure",
			err:  &net.DNSError{Err: "try again", IsTemporary: true},
			want: true,
		},
		{
			name: "permanent dns failure still matches no such host",
			err:  &net.DNSError{Err: "no such host", IsNotFound: true},
			want: true,
		},
		{
			name: "permission denied",
			err:  &net.OpError{Op: "dial", Err: syscall.EACCES},
			want: false,
		},
	}

	classifier := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifier_MessagePatterns(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "refused", err: errors.New("dial tcp 10.0.0.1:5432: connection refused"), want: true},
		{name: "timeout", err: errors.New("read tcp: i/o timeout"), want: true},
		{name: "eof", err: errors.New("unexpected EOF"), want: true},
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("something else entirely"), want: false},
	}

	classifier := NewErrorClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
