package utils

import (
	"testing"

	"github.com/itchan-dev/anonboard/shared/errors"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "hello", want: "hello"},
		{in: "  padded  ", want: "padded"},
		{in: "<b>bold</b> move", want: "bold move"},
		{in: "<script>alert(1)</script>hi", want: "hi"},
		{in: "a & b", want: "a &amp; b"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

func TestSanitizeRequiredText(t *testing.T) {
	t.Run("keeps text around markup", func(t *testing.T) {
		got, err := SanitizeRequiredText("a <i>b</i> < c")
		assert.NoError(t, err)
		assert.Equal(t, "a b &lt; c", got)
	})

	for _, in := range []string{"<hello>", "<script>alert(1)</script>", "  <b></b>  "} {
		t.Run("markup only "+in, func(t *testing.T) {
			_, err := SanitizeRequiredText(in)
			var vErr *errors.ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, emptyAfterSanitizeMsg, err.Error())
		})
	}

	t.Run("blank input is left to the caller", func(t *testing.T) {
		got, err := SanitizeRequiredText("   ")
		assert.NoError(t, err)
		assert.Equal(t, "", got)
	})
}
