package repository

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// TestBuildRequestLogWhereEmpty проверяет запрос без фильтров.
func TestBuildRequestLogWhereEmpty(t *testing.T) {
	where, args := buildRequestLogWhere(RequestLogFilter{})
	if where != "" || len(args) != 0 {
		t.Fatalf("expected empty where, got %q %v", where, args)
	}
}

// TestBuildRequestLogWhere проверяет нумерацию плейсхолдеров.
func TestBuildRequestLogWhere(t *testing.T) {
	vendor := "anthropic"
	success := false
	where, args := buildRequestLogWhere(RequestLogFilter{Vendor: &vendor, Success: &success})

	if where != "WHERE vendor = $1 AND success = $2" {
		t.Fatalf("unexpected where %q", where)
	}
	if !reflect.DeepEqual(args, []interface{}{"anthropic", false}) {
		t.Fatalf("unexpected args %v", args)
	}
}

// TestTruncateMessage проверяет ограничение длины текста ошибки.
func TestTruncateMessage(t *testing.T) {
	if truncateMessage(nil) != nil {
		t.Fatal("expected nil for nil message")
	}

	long := strings.Repeat("я", maxErrorMessageLength+10)
	got := truncateMessage(&long)
	if utf8.RuneCountInString(*got) != maxErrorMessageLength {
		t.Fatalf("expected %d runes, got %d", maxErrorMessageLength, utf8.RuneCountInString(*got))
	}

	short := "boom"
	if truncateMessage(&short) != &short {
		t.Fatal("expected short message to be returned as is")
	}
}
