package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"match-service/internal/reconcile/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opt  model.Options
		want string
	}{
		{name: "lowercase and trim", in: "  John SMITH ", want: "john smith"},
		{name: "collapse inner whitespace", in: "Acme\t\tCorp \n Ltd", want: "acme corp ltd"},
		{name: "nbsp is whitespace", in: "Acme\u00a0Corp", want: "acme corp"},
		{name: "accents kept by default", in: "José Núñez", want: "josé núñez"},
		{name: "accents stripped on request", in: "José Núñez", opt: model.Options{StripAccents: true}, want: "jose nunez"},
		{name: "empty", in: "", want: ""},
		{name: "only spaces", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize(tt.in, tt.opt))
		})
	}
}

func TestTokenSort(t *testing.T) {
	assert.Equal(t, "a b c", tokenSort("c  a b"))
	assert.Equal(t, "", tokenSort(""))
}
