package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := Rupees(500)
	b := Rupees(200)

	assert.Equal(t, int64(30000), a.Sub(b).Minor())
	assert.Equal(t, int64(70000), a.Add(b).Minor())
	assert.Equal(t, int64(30000), Rupees(100).Mul(3).Minor())
	assert.True(t, b.Sub(a).ClampZero().IsZero())
	assert.Equal(t, b, Min(a, b))
}

func TestMoney_Format(t *testing.T) {
	assert.Contains(t, NewMoney(125000, "INR").Format(), "1,250.00")
	assert.Equal(t, "300.00 INR", Rupees(300).String())
	assert.Equal(t, "INR", NewMoney(1, "").Currency())
}
