package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
)

func TestSafe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "no special characters", input: "posts", expected: "posts"},
		{name: "spaces replaced", input: "my blog", expected: "my_blog"},
		{name: "colons replaced", input: "a:b", expected: "a_b"},
		{name: "both replaced", input: "a b:c", expected: "a_b_c"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if result := safe(tt.input); result != tt.expected {
				t.Errorf("safe(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDeleteByPattern_MultipleBatches(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "posts:list:*", scanBatch).SetVal([]string{"posts:list:1:10"}, 42)
	mock.ExpectDel("posts:list:1:10").SetVal(1)
	mock.ExpectScan(42, "posts:list:*", scanBatch).SetVal([]string{"posts:list:2:10", "posts:list:3:10"}, 0)
	mock.ExpectDel("posts:list:2:10", "posts:list:3:10").SetVal(2)

	if err := deleteByPattern(context.Background(), rdb, "posts:list:*"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

func TestDeleteByPattern_ScanError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "posts:list:*", scanBatch).SetErr(errors.New("scan failed"))

	if err := deleteByPattern(context.Background(), rdb, "posts:list:*"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
