package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1.234,56", want: 123456},
		{in: "-588,74", want: -58874},
		{in: "10,00", want: 1000},
		{in: "1.500", want: 150000},
		{in: "12,5 TL", want: 1250},
		{in: "₺ 99,90", want: 9990},
		{in: "1.234.567,89", want: 123456789},
		{in: "250.75", want: 25075},
		{in: "100-", want: -10000},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
