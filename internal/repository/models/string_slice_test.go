package models

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSlice_Value(t *testing.T) {
	tests := []struct {
		name string
		s    StringSlice
		want driver.Value
	}{
		{name: "nil slice", s: nil, want: "[]"},
		{name: "empty slice", s: StringSlice{}, want: "[]"},
		{name: "standards", s: StringSlice{"AP", "IB", "NGSS 9-12"}, want: `["AP","IB","NGSS 9-12"]`},
		{name: "separator inside element", s: StringSlice{"a; b"}, want: `["a; b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.s.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringSlice_Scan(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    StringSlice
		wantErr bool
	}{
		{name: "NULL", value: nil, want: StringSlice{}},
		{name: "empty string", value: "", want: StringSlice{}},
		{name: "json null", value: []byte("null"), want: StringSlice{}},
		{name: "string", value: `["physics_0001","physics_0002"]`, want: StringSlice{"physics_0001", "physics_0002"}},
		{name: "bytes", value: []byte(`["AP"]`), want: StringSlice{"AP"}},
		{name: "malformed", value: "[1,", wantErr: true},
		{name: "unsupported type", value: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringSlice
			err := s.Scan(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}
