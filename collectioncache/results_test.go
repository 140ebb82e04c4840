package collectioncache

import (
	"errors"
	"testing"

	"github.com/goliatone/go-collection-cache/cache"
)

func TestRecords(t *testing.T) {
	records := []Record{&TestEmployee{ID: 1}, &TestEmployee{ID: 2}}

	got, err := Records[*TestEmployee](records)
	if err != nil || len(got) != 2 || got[1].ID != 2 {
		t.Errorf("Records() = %v, %v", got, err)
	}

	got, err = Records[*TestEmployee](&Page{Records: records[:1]})
	if err != nil || len(got) != 1 {
		t.Errorf("Records(page) = %v, %v", got, err)
	}

	if _, err := Records[*TestEmployee](42); !errors.Is(err, cache.ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType, got %v", err)
	}
	if _, err := Records[*TestEmployee]([]Record{&unregisteredRecord{id: 1}}); !errors.Is(err, cache.ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType for foreign records, got %v", err)
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name    string
		result  any
		want    int
		wantErr bool
	}{
		{"int", 4, 4, false},
		{"int64 from a byte store", int64(9), 9, false},
		{"string", "hello", 0, true},
		{"nil", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Count(tt.result)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("Count() = %d, %v", got, err)
			}
		})
	}
}
