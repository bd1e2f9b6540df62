package roplace

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeHistory(t *testing.T) {
	tests := []struct {
		name string
		in   []PricePoint
		want []PricePoint
	}{
		{
			"already ordered",
			[]PricePoint{{100, 10}, {200, 20}},
			[]PricePoint{{100, 10}, {200, 20}},
		},
		{
			"out of order",
			[]PricePoint{{200, 20}, {100, 10}},
			[]PricePoint{{100, 10}, {200, 20}},
		},
		{
			"duplicate timestamp keeps later sample",
			[]PricePoint{{100, 10}, {100, 15}, {200, 20}},
			[]PricePoint{{100, 15}, {200, 20}},
		},
		{"empty", nil, nil},
		{"single", []PricePoint{{100, 10}}, []PricePoint{{100, 10}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeHistory(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeHistory = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestItemUpdateDecodeDistinguishesAbsentFromZero(t *testing.T) {
	var u ItemUpdate
	if err := json.Unmarshal([]byte(`{"itemId":1,"available":0}`), &u); err != nil {
		t.Fatal(err)
	}
	if u.Available == nil || *u.Available != 0 {
		t.Errorf("available = %v, want present zero", u.Available)
	}
	if u.Price != nil {
		t.Errorf("price = %v, want absent", u.Price)
	}
}
